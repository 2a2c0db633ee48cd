package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobSheet_PlainJSON(t *testing.T) {
	raw := `{"customer_name":"Sam Okafor","customer_phone":"+49 151 7654321","bike_model":"Cube Attain","work_required":"Replace brake pads","labor_cost":30,"total_cost":42.5,"date_due":"2026-09-15"}`

	sheet, err := ParseJobSheet(raw)
	require.NoError(t, err)
	assert.Equal(t, "Sam Okafor", sheet.CustomerName)
	assert.Equal(t, "Cube Attain", sheet.BikeModel)
	assert.Equal(t, "Replace brake pads", sheet.WorkRequired)
	assert.Equal(t, 42.5, sheet.TotalCost)
	assert.Equal(t, "2026-09-15", sheet.DateDue)
}

func TestParseJobSheet_MarkdownFenced(t *testing.T) {
	raw := "```json\n{\"customer_name\":\"Sam Okafor\",\"work_required\":\"True rear wheel\"}\n```"

	sheet, err := ParseJobSheet(raw)
	require.NoError(t, err)
	assert.Equal(t, "Sam Okafor", sheet.CustomerName)
	assert.Equal(t, "True rear wheel", sheet.WorkRequired)
}

func TestParseJobSheet_JSONBuriedInProse(t *testing.T) {
	raw := `Here is the extracted data:
{"customer_name":"Sam Okafor","work_required":"Bleed brakes"}
Let me know if you need anything else.`

	sheet, err := ParseJobSheet(raw)
	require.NoError(t, err)
	assert.Equal(t, "Bleed brakes", sheet.WorkRequired)
}

func TestParseJobSheet_BracesInsideStrings(t *testing.T) {
	raw := `{"customer_name":"Sam {the fast} Okafor","work_required":"Fix \"quoted\" shifter {cable}"}`

	sheet, err := ParseJobSheet(raw)
	require.NoError(t, err)
	assert.Equal(t, "Sam {the fast} Okafor", sheet.CustomerName)
}

func TestParseJobSheet_MissingRequiredFields(t *testing.T) {
	_, err := ParseJobSheet(`{"customer_name":"","work_required":"Fix it"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer_name")

	_, err = ParseJobSheet(`{"customer_name":"Sam Okafor","work_required":"   "}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work_required")
}

func TestParseJobSheet_UnknownKeysRejected(t *testing.T) {
	_, err := ParseJobSheet(`{"customer_name":"Sam","work_required":"Fix it","mood":"great"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed extraction JSON")
}

func TestParseJobSheet_NoJSONAtAll(t *testing.T) {
	_, err := ParseJobSheet("I could not read the sheet, sorry.")
	require.Error(t, err)

	// Unclosed object fails the same way.
	_, err = ParseJobSheet(`{"customer_name":"Sam"`)
	require.Error(t, err)
}
