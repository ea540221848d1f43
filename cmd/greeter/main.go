// Command greeter is a small demonstration program: one main command plus
// three subcommands, all derived from plain Go functions.
package main

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/vk/funcli"
)

type mainArgs struct {
	Verbose bool `funcli:"verbose" default:"false" help:"announce settings before any subcommand runs"`
}

type greetArgs struct {
	Name     string `funcli:"name" help:"who to greet"`
	Greeting string `funcli:"greeting" default:"Hello" help:"greeting to use"`
}

type addArgs struct {
	A int `funcli:"a"`
	B int `funcli:"b"`
}

type countArgs struct {
	N       int `funcli:"n" help:"how many numbers to emit"`
	DelayMS int `funcli:"delay-ms" default:"0" help:"pause between items, in milliseconds"`
}

func runMain(ctx context.Context, in *mainArgs) (string, error) {
	return fmt.Sprintf("verbose is %t", in.Verbose), nil
}

func greet(ctx context.Context, in *greetArgs) (string, error) {
	return in.Greeting + " " + in.Name, nil
}

func add(ctx context.Context, in *addArgs) (int, error) {
	return in.A + in.B, nil
}

// count streams: each number is visible on stdout before the next one is
// produced, which the delay-ms option makes easy to watch.
func count(ctx context.Context, in *countArgs) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for i := 1; i <= in.N; i++ {
			if i > 1 && in.DelayMS > 0 {
				select {
				case <-time.After(time.Duration(in.DelayMS) * time.Millisecond):
				case <-ctx.Done():
					return
				}
			}
			if !yield(i, nil) {
				return
			}
		}
	}
}

func main() {
	// Use a minimal logger until the host decides otherwise.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	app := funcli.New(
		funcli.WithName("greeter"),
		funcli.WithLogger(funcli.NewLogger(os.Getenv("GREETER_LOG_LEVEL"), "text", os.Stderr)),
	)

	for _, err := range []error{
		app.RegisterMain(runMain),
		app.RegisterSubcommand("greet", greet),
		app.RegisterSubcommand("add", add),
		app.RegisterSubcommand("count", count),
	} {
		if err != nil {
			fmt.Fprintln(os.Stderr, "setup:", err)
			os.Exit(1)
		}
	}

	os.Exit(app.Execute(context.Background()))
}
