package seed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/daefinder/internal/domain/device"
)

// idNamespace derives stable document ids from registry ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://daefinder/device"))

// DocumentID returns a UUIDv5 of c_gid when present, a random UUIDv4 otherwise.
func DocumentID(fields map[string]string) string {
	if gid := strings.TrimSpace(fields[device.FieldGID]); gid != "" {
		return uuid.NewSHA1(idNamespace, []byte(gid)).String()
	}
	return uuid.NewString()
}

type featureCollection struct {
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// Decode reads a dataset of device objects: either a JSON array of flat
// objects or a GeoJSON FeatureCollection whose feature properties hold the fields.
// Numbers keep their source text, nulls are dropped and arrays become the
// registry's brace list encoding.
func Decode(r io.Reader) ([]device.RawDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}

	var objects []map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	switch data[0] {
	case '[':
		if err := dec.Decode(&objects); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
	case '{':
		var fc featureCollection
		if err := dec.Decode(&fc); err != nil {
			return nil, fmt.Errorf("decode feature collection: %w", err)
		}
		objects = make([]map[string]any, 0, len(fc.Features))
		for _, f := range fc.Features {
			objects = append(objects, f.Properties)
		}
	default:
		return nil, fmt.Errorf("dataset must be a JSON array or a GeoJSON FeatureCollection")
	}

	docs := make([]device.RawDocument, 0, len(objects))
	for i, obj := range objects {
		if obj == nil {
			return nil, fmt.Errorf("item %d: not an object", i)
		}
		fields, err := flatten(obj)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		docs = append(docs, device.RawDocument{ID: DocumentID(fields), Fields: fields})
	}
	return docs, nil
}

func flatten(obj map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok, err := scalar(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		if ok {
			out[k] = s
		}
	}
	return out, nil
}

func scalar(v any) (string, bool, error) {
	switch t := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return t, true, nil
	case json.Number:
		return t.String(), true, nil
	case bool:
		return strconv.FormatBool(t), true, nil
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			s, ok, err := scalar(e)
			if err != nil {
				return "", false, err
			}
			if ok {
				parts = append(parts, s)
			}
		}
		return "{" + strings.Join(parts, ",") + "}", true, nil
	default:
		return "", false, fmt.Errorf("unsupported value of type %T", v)
	}
}
