// Команда validate-orders проверяет заказы офлайн теми же правилами разбора
// и валидации, что и POST /order и консьюмер Kafka. Валидные заказы печатаются
// в каноническом JSON (без суррогатных ключей), по одному на строку.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Gunvolt24/wb_orders/pkg/validate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "validate-orders: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	inputPath := flag.String("in", "",
		"file with order payloads: .json holds one order object, .jsonl one order per line; empty reads JSONL from stdin")
	outputPath := flag.String("out", "", "where to write valid orders as canonical JSON lines; empty means stdout")
	formatStr := flag.String("format", string(validate.FormatAuto), "payload format: auto (by extension) | json | jsonl")
	flag.Parse()

	format := validate.InputFormat(*formatStr)
	source := *inputPath
	if source == "" {
		source = "/dev/stdin"
		if format == validate.FormatAuto {
			format = validate.FormatJSONL
		}
	}

	var out io.Writer = os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	summary, err := validate.ValidateFile(context.Background(), validate.NewOrderValidator(), source, format, out)
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", source, err, summary)
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", source, summary)
	return nil
}
