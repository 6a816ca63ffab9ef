package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	phpserial "github.com/wippyai/php-serial"
	"github.com/wippyai/php-serial/cache"
	"github.com/wippyai/php-serial/codec"
	"github.com/wippyai/php-serial/transcoder"
	"github.com/wippyai/php-serial/value"
)

func main() {
	var (
		inFile      = flag.String("in", "", "Input file (default stdin)")
		decodeMode  = flag.Bool("decode", true, "Decode serialized input and print it")
		encodeMode  = flag.Bool("encode", false, "Read JSON and print its serialized form")
		asJSON      = flag.Bool("json", false, "Print decoded values as JSON")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Enable development logging")
	)
	flag.Parse()

	var logger *zap.Logger
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		installLogger(l)
		logger = l
	}

	if *interactive {
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !*decodeMode && !*encodeMode {
		fmt.Fprintln(os.Stderr, "Usage: phpser [-in file] [-json]   decode serialized input")
		fmt.Fprintln(os.Stderr, "       phpser -encode [-in file]   serialize JSON input")
		fmt.Fprintln(os.Stderr, "       phpser -i                   interactive mode")
		os.Exit(1)
	}

	if err := run(*inFile, *encodeMode, *asJSON, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func installLogger(l *zap.Logger) {
	transcoder.SetLogger(l)
	cache.SetLogger(l)
	codec.SetLogger(l)
}

func run(inFile string, encode, asJSON bool, logger *zap.Logger) error {
	data, err := readInput(inFile)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	rec := &phpserial.Recorder{}
	c := codec.New(codec.WithDiagnostics(diagnostics(rec, logger)))

	var out string
	if encode {
		out, err = encodeJSON(c, data)
	} else {
		out, err = decodeText(c, data, asJSON)
	}
	for _, n := range rec.Notices() {
		fmt.Fprintln(os.Stderr, noticeStyle.Render("notice: "+n.Error()))
	}
	if err != nil {
		return err
	}

	fmt.Print(out)
	if encode {
		fmt.Println()
	}
	return nil
}

// diagnostics collects notices for printing and, with a logger, also logs
// them as they happen.
func diagnostics(rec *phpserial.Recorder, logger *zap.Logger) phpserial.Diagnostics {
	if logger == nil {
		return rec
	}
	return phpserial.Tee(rec, codec.LogDiagnostics(logger))
}

func readInput(inFile string) ([]byte, error) {
	if inFile != "" {
		return os.ReadFile(inFile)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, helpStyle.Render("reading from stdin, end with Ctrl+D"))
	}
	return io.ReadAll(os.Stdin)
}

// decodeText decodes one serialized value. Trailing line breaks from files
// and terminals are not part of the value.
func decodeText(c *codec.Codec, data []byte, asJSON bool) (string, error) {
	data = bytes.TrimRight(data, "\r\n")
	v, err := c.Unserialize(data)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if !asJSON {
		out := value.Dump(v)
		if len(out) == 0 || out[len(out)-1] != '\n' {
			out += "\n"
		}
		return out, nil
	}
	b, err := json.MarshalIndent(value.ToNative(v), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(b) + "\n", nil
}

// encodeJSON serializes a JSON document. Objects carrying a "__class"
// member become objects of that class.
func encodeJSON(c *codec.Codec, data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return "", fmt.Errorf("parse json: %w", err)
	}
	v, err := value.FromNative(x)
	if err != nil {
		return "", err
	}
	out, err := c.Serialize(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(out), nil
}
