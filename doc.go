// Package funcli turns ordinary Go functions into a runnable command-line
// program.
//
// The argument surface is derived from each handler's input struct: field
// types become declared parameter types, the funcli tag names the
// parameter, and a default tag turns it into an optional --flag while its
// absence makes it a required positional. One optional main command runs on
// every invocation; any number of named subcommands dispatch off the first
// free token, and main's entire output is emitted before the subcommand's.
//
//	type GreetArgs struct {
//		Name     string `funcli:"name" help:"who to greet"`
//		Greeting string `funcli:"greeting" default:"Hello"`
//	}
//
//	app := funcli.New(funcli.WithName("greeter"))
//	app.RegisterMain(func(ctx context.Context, in *GreetArgs) (string, error) {
//		return in.Greeting + " " + in.Name, nil
//	})
//	os.Exit(app.Execute(context.Background()))
//
// Handlers returning iter.Seq[any] or iter.Seq2[any, error] stream: each
// produced item is written to the output sink before the handler is resumed
// for the next one.
//
// Flag syntax, --name=value splitting, and usage rendering are delegated to
// github.com/spf13/pflag; this package only compiles signatures, coerces
// tokens, and sequences handler invocation.
package funcli
