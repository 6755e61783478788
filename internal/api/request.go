package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON body into v. Malformed bodies, including unknown
// enum values such as an unsupported split type, are validation errors.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Wrap(apperr.KindValidation, err, "invalid request body")
	}
	return nil
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// queryInt parses an optional integer query parameter, returning 0 if it is
// absent.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", name)
	}
	return n, nil
}

// queryPage reads skip and limit.
func queryPage(r *http.Request) (storage.Page, error) {
	skip, err := queryInt(r, "skip")
	if err != nil {
		return storage.Page{}, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return storage.Page{}, err
	}
	return storage.NewPage(skip, limit)
}
