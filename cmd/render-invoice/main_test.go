package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const invoiceJSON = `{
  "invoiceNumber": "INV-42",
  "date": "2024-06-30",
  "employeeName": "Meera Iyer",
  "services": [{"description": "Audit support", "hours": 6, "rate": 1800}],
  "taxRate": 18,
  "country": "india"
}`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRun_WritesPDF(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "invoice.json", invoiceJSON)
	profile := writeFile(t, dir, "profile.json", `{"companyName":"Acme","companyAddress":"Chennai"}`)
	out := filepath.Join(dir, "out")

	written, err := run(context.Background(), options{
		configPath:  filepath.Join(dir, "none.yaml"),
		inPath:      in,
		profilePath: profile,
		lang:        "en",
		outDir:      out,
	}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, filepath.Join(out, "invoice_INV-42.pdf"), written[0])

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "invoice.json", invoiceJSON)
	invalid := writeFile(t, dir, "bad.json", `{"invoiceNumber":"","date":"2024-06-30","employeeName":"x"}`)

	tests := []struct {
		name string
		opts options
	}{
		{"unsupported language", options{inPath: valid, lang: "fr"}},
		{"missing input", options{inPath: filepath.Join(dir, "missing.json"), lang: "en"}},
		{"invalid invoice", options{inPath: invalid, lang: "en"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.configPath = filepath.Join(dir, "none.yaml")
			tt.opts.outDir = dir
			_, err := run(context.Background(), tt.opts, zap.NewNop())
			assert.Error(t, err)
		})
	}
}
