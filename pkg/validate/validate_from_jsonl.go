package validate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/wb_orders/internal/ports"
)

// LineError - причина отказа для одной строки JSONL (нумерация с 1).
type LineError struct {
	Line int
	Err  error
}

// JSONLResult - статистика валидации потока JSONL.
type JSONLResult struct {
	ValidLinesCount   int
	InvalidLinesCount int
	Invalid           []LineError
}

// ValidateJSONLStream читает JSONL из reader-а, валидирует каждую строку и пишет
// валидные записи в writer каноническим JSON по одной на строку.
// Пустые строки пропускаются. Невалидные строки не прерывают обработку.
func ValidateJSONLStream(ctx context.Context, validator ports.OrderValidator, ir io.Reader, ow io.Writer) (JSONLResult, error) {
	var res JSONLResult

	scanner := bufio.NewScanner(ir)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(bytes.TrimSpace(lineBytes)) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		order, err := ValidateOrderFromJSON(ctx, validator, lineBytes)
		if err != nil {
			res.InvalidLinesCount++
			res.Invalid = append(res.Invalid, LineError{Line: line, Err: err})
			continue
		}

		marshal, err := json.Marshal(order)
		if err != nil {
			return res, fmt.Errorf("marshal line %d: %w", line, err)
		}
		if _, err := ow.Write(append(marshal, '\n')); err != nil {
			return res, fmt.Errorf("write valid line: %w", err)
		}
		res.ValidLinesCount++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}
