package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/bitacora-blog/apiserver/internal/validation"
)

const maxBodyBytes = 1 << 20

// Validate decodes the JSON object body and checks it against rules. A
// malformed body halts with 400 and rule failures halt with 422. The
// decoded object is attached to the context and the body is restored for
// later readers.
func Validate(rules validation.Ruleset) Step {
	return func(r *http.Request) Outcome {
		body, err := decodeObject(r)
		if err != nil {
			return haltWith(badRequest())
		}

		if errs := rules.Validate(body); len(errs) > 0 {
			return haltWith(validationFailed(errs))
		}

		return Continue(context.WithValue(r.Context(), contextBodyKey, body))
	}
}

func decodeObject(r *http.Request) (map[string]any, error) {
	if r.Body == nil {
		return map[string]any{}, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	_ = r.Body.Close()
	if len(raw) > maxBodyBytes {
		return nil, errBodyTooLarge
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	body := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	if body == nil {
		return map[string]any{}, nil
	}
	return body, nil
}
