package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"diario/internal/core"
)

// errBadPayload marks requests whose body could not be decoded at all.
var errBadPayload = errors.New("invalid request body")

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst, rejecting unknown fields, trailing
// garbage and bodies over 1 MiB.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errBadPayload)
	}
	return nil
}

// parseChartQuery extracts the time filter and the optional custom range
// from chart query parameters. An absent filter falls through to the
// resolver's pass-through default; start/end are only meaningful when the
// filter is custom.
func parseChartQuery(query url.Values) (core.TimeFilter, *core.DateRange) {
	filter := core.TimeFilter(strings.TrimSpace(query.Get("filter")))

	var custom *core.DateRange
	if filter == core.FilterCustom {
		custom = &core.DateRange{
			Start: strings.TrimSpace(query.Get("start")),
			End:   strings.TrimSpace(query.Get("end")),
		}
	}
	return filter, custom
}
