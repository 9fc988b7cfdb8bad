package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quotedesk/services"
	"quotedesk/storage"
	"quotedesk/store"
	"quotedesk/testhelpers"
)

func TestRenderCommand(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	org := testhelpers.CreateTestOrganization(t, app, "Brightline")
	fam := testhelpers.CreateTestFamily(t, app, org.Id, "Lighting", 0.1)
	testhelpers.CreateTestProduct(t, app, org.Id, fam.Id, "Desk Lamp", 100, nil)

	s := store.New(app)
	sels, err := s.FamilySelections(org.Id, []string{fam.Id})
	if err != nil {
		t.Fatalf("FamilySelections: %v", err)
	}
	q, err := s.SaveQuote(org.Id, services.AddFamilies(services.Quote{Customer: services.Customer{Name: "Acme"}}, sels))
	if err != nil {
		t.Fatalf("SaveQuote: %v", err)
	}

	files, err := storage.NewLocalStore(t.TempDir(), "http://docs.test", "secret")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	docs := &services.DocumentService{
		Pool:    services.NewRenderPool(1, 30*time.Second),
		Storage: files,
		Quotes:  s,
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, out string)
	}{
		{
			name: "writes pdf",
			args: []string{"--org", org.Id, "--quote", q.ID, "--out", "OUT"},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "wrote ") {
					t.Errorf("output = %q", out)
				}
			},
		},
		{
			name:    "out required without finalize",
			args:    []string{"--org", org.Id, "--quote", q.ID},
			wantErr: true,
		},
		{
			name:    "unknown quote",
			args:    []string{"--org", org.Id, "--quote", "missing", "--out", "OUT"},
			wantErr: true,
		},
		{
			name: "finalize",
			args: []string{"--org", org.Id, "--quote", q.ID, "--finalize"},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "finalized "+q.DisplayID) {
					t.Errorf("output = %q", out)
				}
				got, _ := s.GetQuote(org.Id, q.ID)
				if got.Status != services.StatusFinalized {
					t.Errorf("status = %q, want FINALIZED", got.Status)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outPath := filepath.Join(t.TempDir(), "quote.pdf")
			args := make([]string, len(tt.args))
			for i, a := range tt.args {
				if a == "OUT" {
					a = outPath
				}
				args[i] = a
			}

			cmd := NewRenderCommand(app, docs)
			var buf bytes.Buffer
			cmd.SetOut(&buf)
			cmd.SetErr(&buf)
			cmd.SetArgs(args)

			err := cmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.check != nil {
				tt.check(t, buf.String())
			}
			if strings.Contains(strings.Join(args, " "), outPath) {
				data, err := os.ReadFile(outPath)
				if err != nil || !bytes.HasPrefix(data, []byte("%PDF-")) {
					t.Errorf("output file is not a PDF: %v", err)
				}
			}
		})
	}
}
