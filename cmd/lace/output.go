package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/lacelang/lace/object"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// formatResult renders a program result. Text output is empty for none.
func formatResult(result object.Object, format string, useColor bool) (string, error) {
	switch strings.ToLower(format) {
	case "", "text":
		if result == nil || result == object.None {
			return "", nil
		}
		return result.String(), nil
	case "json":
		value := map[string]any{"value": nil, "type": string(object.NONE)}
		if result != nil {
			value["value"] = result.Interface()
			value["type"] = string(result.Type())
		}
		data, err := marshalJSON(value, useColor)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func marshalJSON(value any, useColor bool) ([]byte, error) {
	if useColor {
		return prettyjson.Marshal(value)
	}
	return json.MarshalIndent(value, "", "  ")
}

func (a *app) printResult(w io.Writer, result object.Object) error {
	out, err := formatResult(result, a.v.GetString("output"), a.useColor())
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintln(w, out)
	}
	return nil
}
