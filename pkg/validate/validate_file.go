package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/wb_orders/internal/ports"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// ValidateFile валидирует файл как JSON (один заказ) или JSONL (заказ на строку)
// и пишет валидные заказы в writer. Формат auto выбирается по расширению.
func ValidateFile(ctx context.Context, validator ports.OrderValidator, filePath string, format InputFormat, ow io.Writer) (string, error) {
	resSummary := ""

	if format == FormatAuto || format == "" {
		format = DetectFormat(filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return resSummary, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		raw, err := io.ReadAll(file)
		if err != nil {
			return resSummary, fmt.Errorf("read file: %w", err)
		}
		order, err := ValidateOrderFromJSON(ctx, validator, raw)
		if err != nil {
			return "0 valid / 1 invalid", err
		}
		canonical, err := json.Marshal(order)
		if err != nil {
			return resSummary, fmt.Errorf("marshal order: %w", err)
		}
		if _, err := ow.Write(append(canonical, '\n')); err != nil {
			return resSummary, fmt.Errorf("write json: %w", err)
		}
		return "1 valid / 0 invalid", nil

	case FormatJSONL:
		result, err := ValidateJSONLStream(ctx, validator, file, ow)
		if err != nil {
			return resSummary, err
		}
		summary := fmt.Sprintf("%d valid / %d invalid", result.ValidLinesCount, result.InvalidLinesCount)
		for _, le := range result.Invalid {
			summary += fmt.Sprintf("\n  line %d: %v", le.Line, le.Err)
		}
		return summary, nil

	default:
		return resSummary, fmt.Errorf("unsupported format: %s", format)
	}
}

// DetectFormat выбирает формат по расширению; неизвестное расширение считается JSON.
func DetectFormat(filePath string) InputFormat {
	if strings.ToLower(filepath.Ext(filePath)) == ".jsonl" {
		return FormatJSONL
	}
	return FormatJSON
}
