package lace_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/lacelang/lace"
	"github.com/lacelang/lace/errz"
)

func ExampleEval() {
	result, err := lace.Eval(context.Background(), `
fn fib(n) {
	if n < 2 {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}
fib(20);
`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result)
	// Output: 6765
}

func ExampleRun() {
	ctx := context.Background()

	// Compile once and run the same code concurrently with different
	// globals. Each run gets its own virtual machine.
	code, err := lace.Compile(ctx, `let result = input * input; result;`)
	if err != nil {
		log.Fatal(err)
	}

	inputs := []int{2, 3, 4, 5}
	results := make([]string, len(inputs))
	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := lace.Run(ctx, code, lace.WithGlobals(map[string]any{"input": input}))
			if err != nil {
				results[i] = err.Error()
				return
			}
			results[i] = result.String()
		}()
	}
	wg.Wait()
	fmt.Println(results)
	// Output: [4 9 16 25]
}

func ExampleWithStdout() {
	_, err := lace.Eval(context.Background(), `writeln!("sum: ", 1 + 2);`,
		lace.WithStdout(os.Stdout))
	if err != nil {
		log.Fatal(err)
	}
	// Output: sum: 3
}

func Example_runtimeError() {
	_, err := lace.Eval(context.Background(), "let x = 10;\nx / 0;", lace.WithFilename("div.lace"))

	var rerr *errz.RuntimeError
	if errors.As(err, &rerr) {
		fmt.Println(rerr.Kind)
		fmt.Println(rerr.Location.Line, rerr.Location.Column)
		fmt.Println(errors.Is(err, errz.ErrDivisionByZero))
	}
	// Output:
	// division by zero
	// 2 3
	// true
}
