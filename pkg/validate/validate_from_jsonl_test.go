package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Gunvolt24/wb_orders/internal/domain"
)

func TestValidateJSONLStream_Mixed(t *testing.T) {
	line1 := oneLineJSON(minimalValidOrderJSON("uid-1", "txn-1", "+1"))
	line2 := oneLineJSON(minimalValidOrderJSON("uid-2", "txn-2", "2")) // phone без "+"
	line3 := ""
	line4 := oneLineJSON(minimalValidOrderJSON("uid-3", "txn-3", "+3"))

	input := strings.Join([]string{line1, line2, line3, line4}, "\n")
	var out bytes.Buffer

	res, err := ValidateJSONLStream(context.Background(), NewOrderValidator(), strings.NewReader(input), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ValidLinesCount != 2 || res.InvalidLinesCount != 1 {
		t.Fatalf("unexpected counters: %+v", res)
	}
	if len(res.Invalid) != 1 || res.Invalid[0].Line != 2 {
		t.Fatalf("invalid line must be reported with its number: %+v", res.Invalid)
	}

	outLines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(outLines) != 2 {
		t.Fatalf("expected 2 output lines, got %d", len(outLines))
	}
	var o1, o2 domain.Order
	if err := json.Unmarshal([]byte(outLines[0]), &o1); err != nil {
		t.Fatalf("unmarshal line1: %v", err)
	}
	if err := json.Unmarshal([]byte(outLines[1]), &o2); err != nil {
		t.Fatalf("unmarshal line2: %v", err)
	}
	if o1.OrderUID != "uid-1" || o2.OrderUID != "uid-3" {
		t.Fatalf("unexpected output order: %s, %s", o1.OrderUID, o2.OrderUID)
	}
}

func TestValidateJSONLStream_LargeLine(t *testing.T) {
	raw := oneLineJSON(minimalValidOrderJSON("uid-big", "txn-big", "+1"))
	raw = strings.Replace(raw, `"name": "N"`, `"name": "`+strings.Repeat("X", 200_000)+`"`, 1)

	var out bytes.Buffer
	res, err := ValidateJSONLStream(context.Background(), NewOrderValidator(), strings.NewReader(raw), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ValidLinesCount != 1 {
		t.Fatalf("large line must be accepted: %+v", res)
	}
}
