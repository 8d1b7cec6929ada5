package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/doichev-kostia/performance-aware-programming/sim8086/internal/log"
	"github.com/doichev-kostia/performance-aware-programming/sim8086/pkg/crosscheck"
	"github.com/doichev-kostia/performance-aware-programming/sim8086/pkg/decoder"
	"github.com/spf13/cobra"
)

type options struct {
	logLevel      string
	debug         bool
	modules       string
	explicitWidth bool
	verify        bool
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "sim8086 <file>",
		Short: "Decode an 8086 binary into nasm-style assembly",
		Long: `Reads a binary assembled with nasm (bits 16) and prints the instructions it
contains. Supports mov, add, sub, cmp, the short conditional jumps and the loop family.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := opts.logLevel
			if opts.debug {
				level = "debug"
				log.EnableModule(log.DecoderMonitoring)
			}
			if err := log.InitLogger(level); err != nil {
				return err
			}
			log.EnableModules(opts.modules)

			return run(stdout, args[0], opts)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "trace, debug, info, warn or error")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "log every decoded instruction (same as --log-level=debug --modules=decoder)")
	cmd.Flags().StringVar(&opts.modules, "modules", "", "comma separated modules to enable debug logs for: decoder, verify")
	cmd.Flags().BoolVar(&opts.explicitWidth, "explicit-width", false, "add byte/word to memory destinations of immediate instructions")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "cross-check instruction boundaries with x86asm")

	return cmd
}

func run(stdout io.Writer, filename string, opts *options) error {
	if !fileExists(filename) {
		return fmt.Errorf("the specified file %s doesn't exist", filename)
	}

	bytes, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read the file %s: %w", filename, err)
	}
	log.Info(log.CLIMonitoring, "decoding", "file", filename, "size", len(bytes))

	decoderOpts := []decoder.Option{decoder.WithHook(traceInstruction)}
	if opts.explicitWidth {
		decoderOpts = append(decoderOpts, decoder.WithExplicitWidth())
	}

	d := decoder.NewDecoder(bytes, decoderOpts...)
	decoded, err := d.Decode()
	if err != nil {
		// print what was decoded before the failing instruction
		fmt.Fprint(stdout, printHead(filename)+string(d.Decoded()))
		return err
	}

	fmt.Fprint(stdout, printHead(filename)+string(decoded))

	if opts.verify {
		return verify(bytes, d)
	}
	return nil
}

func traceInstruction(instruction decoder.Instruction) {
	log.Debug(log.DecoderMonitoring, instruction.Operation.String(),
		"offset", instruction.Offset,
		"bytes", fmt.Sprintf("% x", instruction.Bytes),
		"layout", instruction.Descriptor.Layout.String(),
		"d", instruction.Descriptor.Direction.String(),
		"w", instruction.Descriptor.Word.String(),
		"s", instruction.Descriptor.Sign.String(),
	)
}

func verify(bytes []byte, d *decoder.Decoder) error {
	instructions, err := d.Instructions()
	if err != nil {
		return err
	}

	result := crosscheck.Verify(bytes, instructions)
	for _, mismatch := range result.Mismatches {
		if mismatch.Kind == crosscheck.MnemonicMismatch {
			log.Warn(log.VerifyMonitoring, "mnemonic differs from x86asm", "offset", mismatch.Instruction.Offset, "decoded", mismatch.Instruction.Operation.String(), "reference", mismatch.Reference)
			continue
		}
		log.Error(log.VerifyMonitoring, "instruction differs from x86asm", "offset", mismatch.Instruction.Offset, "kind", mismatch.Kind.String(), "detail", mismatch.Detail)
	}
	log.Debug(log.VerifyMonitoring, "verified", "instructions", result.Checked, "mismatches", len(result.Mismatches))

	if result.Fatal() {
		return fmt.Errorf("x86asm cross-check failed for %d of %d instructions", len(result.Mismatches), result.Checked)
	}
	return nil
}

func printHead(filename string) string {
	return fmt.Sprintf("; %s\n", filename)
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)

	return !errors.Is(err, os.ErrNotExist)
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		exit(err)
	}
}

func exit(err error) {
	var decodeErr *decoder.DecodeError
	if errors.As(err, &decodeErr) {
		log.Error(log.CLIMonitoring, "decoding stopped", "offset", decodeErr.Offset, "opcode", fmt.Sprintf("%.8b", decodeErr.Opcode))
	}
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
