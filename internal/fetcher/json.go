package fetcher

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pricechart/internal/model"
)

// DecodeJSONArray decodes a JSON array streaming, sending each element to a channel.
// Expects input in the form [{...},{...}].
// Both channels are closed when processing completes.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := json.NewDecoder(r)

		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			errCh <- eris.Wrap(err, "json: read opening token")
			return
		}

		delim, ok := tok.(json.Delim)
		if !ok || delim != '[' {
			errCh <- eris.Errorf("json: expected '[', got %v", tok)
			return
		}

		for decoder.More() {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}

			var item T
			if err := decoder.Decode(&item); err != nil {
				errCh <- eris.Wrap(err, "json: decode element")
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
		}

		if _, err := decoder.Token(); err != nil {
			errCh <- eris.Wrap(err, "json: read closing token")
		}
	}()

	return outCh, errCh
}

// ReadJSON reads price records from either a bare array of objects or an
// envelope of the form {"data": [...]} as served by /api/prices. Scalar values
// are rendered as text; null and nested values are left out.
func ReadJSON(ctx context.Context, r io.Reader) ([]model.RawRecord, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "json: peek")
	}

	if first == '{' {
		var env struct {
			Data []map[string]any `json:"data"`
		}
		if err := json.NewDecoder(br).Decode(&env); err != nil {
			return nil, eris.Wrap(err, "json: decode envelope")
		}
		records := make([]model.RawRecord, 0, len(env.Data))
		for _, obj := range env.Data {
			records = append(records, objectRecord(obj))
		}
		return records, nil
	}

	objCh, errCh := DecodeJSONArray[map[string]any](ctx, br)
	var records []model.RawRecord
	for obj := range objCh {
		records = append(records, objectRecord(obj))
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

func objectRecord(obj map[string]any) model.RawRecord {
	rec := make(model.RawRecord, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			rec[k] = val
		case float64:
			rec[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			rec[k] = strconv.FormatBool(val)
		}
	}
	return rec
}
