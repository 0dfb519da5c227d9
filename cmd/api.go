package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maximbilan/qianxun/internal/api"
	"github.com/maximbilan/qianxun/internal/validation"
	"github.com/spf13/cobra"
)

var (
	apiQuery []string
	apiData  string
	apiParts []string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Call the navigation backend",
}

func newAPIMethodCmd(method string) *cobra.Command {
	return &cobra.Command{
		Use:   strings.ToLower(method) + " [path]",
		Short: method + " a backend path and print the JSON response",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a, err := bootstrap()
			if err != nil {
				exitWithError(err)
			}
			defer a.Close()

			req := apiRequest{Method: method, Path: args[0], Query: apiQuery, Data: apiData, Parts: apiParts}
			if err := req.run(cmd.Context(), a.apiClient(), os.Stdout); err != nil {
				a.Close()
				exitWithError(err)
			}
		},
	}
}

type apiRequest struct {
	Method string
	Path   string
	Query  []string
	Data   string
	Parts  []string
}

func (r apiRequest) run(ctx context.Context, client *api.Client, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validation.ValidatePath(r.Path); err != nil {
		return err
	}

	var out any
	var err error
	switch r.Method {
	case "GET":
		var query map[string]string
		if query, err = parsePairs(r.Query); err != nil {
			return err
		}
		err = client.Get(ctx, r.Path, query, &out)
	case "POST", "PUT":
		var payload any
		if payload, err = parsePayload(r.Data); err != nil {
			return err
		}
		if r.Method == "POST" {
			err = client.Post(ctx, r.Path, payload, &out)
		} else {
			err = client.Put(ctx, r.Path, payload, &out)
		}
	case "DELETE":
		err = client.Delete(ctx, r.Path, &out)
	case "UPLOAD":
		var form *api.Form
		if form, err = buildForm(r.Parts); err != nil {
			return err
		}
		err = client.Upload(ctx, r.Path, form, &out)
	default:
		return fmt.Errorf("unsupported method %q", r.Method)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// parsePairs turns key=value arguments into a map.
func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid pair %q, want key=value", p)
		}
		m[k] = v
	}
	return m, nil
}

func parsePayload(data string) (any, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	return payload, nil
}

// buildForm accepts field=value and field=@path parts.
func buildForm(parts []string) (*api.Form, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("upload needs at least one -f part")
	}
	form := api.NewForm()
	for _, p := range parts {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid form part %q, want field=value or field=@file", p)
		}
		if path, isFile := strings.CutPrefix(v, "@"); isFile {
			if err := form.AddFilePath(k, path); err != nil {
				return nil, err
			}
			continue
		}
		form.AddField(k, v)
	}
	return form, nil
}

func init() {
	for _, method := range []string{"GET", "POST", "PUT", "DELETE", "UPLOAD"} {
		c := newAPIMethodCmd(method)
		switch method {
		case "GET":
			c.Flags().StringArrayVarP(&apiQuery, "query", "q", nil, "query parameter as key=value")
		case "POST", "PUT":
			c.Flags().StringVarP(&apiData, "data", "d", "", "JSON request body")
		case "UPLOAD":
			c.Flags().StringArrayVarP(&apiParts, "form", "f", nil, "form part as field=value or field=@file")
		}
		apiCmd.AddCommand(c)
	}
}
