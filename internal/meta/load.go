package meta

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gcfpack/internal/gcf"
)

type rawDescription struct {
	Header    *rawHeader        `json:"header"`
	Resources []json.RawMessage `json:"resources"`
}

type rawHeader struct {
	Version *uint32           `json:"version"`
	Flags   []string          `json:"flags"`
	Tags    map[string]string `json:"tags"`
}

// rawResource is the superset of fields any resource object may carry.
// Pointers distinguish absent from zero so type-conditional presence rules
// can be enforced.
type rawResource struct {
	Type     *string  `json:"type"`
	Format   *string  `json:"format"`
	Source   *string  `json:"source"`
	Flags    []string `json:"flags"`
	Width    *int64   `json:"width"`
	Height   *int64   `json:"height"`
	Depth    *int64   `json:"depth"`
	MipCount *int64   `json:"mip_count"`
}

// Parse turns a raw description document into a validated Description.
//
// Malformed JSON fails with a ParseError. Well-formed documents that break a
// schema rule fail with SchemaErrors carrying every violation found; the
// caller never has to fix resources one at a time. Unknown fields are
// rejected at every level, so a misspelled field name fails loudly instead
// of being silently dropped.
func Parse(data []byte) (*Description, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw rawDescription
	if err := dec.Decode(&raw); err != nil {
		if json.Valid(data) {
			return nil, SchemaErrors{{Index: -1, Reason: fmt.Sprintf("not a valid description object: %v", err)}}
		}
		return nil, &ParseError{Err: err}
	}

	var violations SchemaErrors

	header, errs := validateHeader(raw.Header)
	violations = append(violations, errs...)

	if raw.Resources == nil {
		violations = append(violations, &SchemaError{Index: -1, Field: "resources", Reason: "missing resource list"})
		return nil, violations
	}
	if len(raw.Resources) > gcf.MaxResources {
		violations = append(violations, &SchemaError{Index: -1, Field: "resources", Reason: fmt.Sprintf("%d resources exceed the container limit of %d", len(raw.Resources), gcf.MaxResources)})
		return nil, violations
	}

	resources := make([]Resource, 0, len(raw.Resources))
	for i, msg := range raw.Resources {
		res, errs := parseResource(i, msg)
		if len(errs) > 0 {
			violations = append(violations, errs...)
			continue
		}
		resources = append(resources, res)
	}

	if len(violations) > 0 {
		return nil, violations
	}

	return &Description{Header: header, Resources: resources}, nil
}

func parseResource(index int, msg json.RawMessage) (Resource, SchemaErrors) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.DisallowUnknownFields()

	var raw rawResource
	if err := dec.Decode(&raw); err != nil {
		return nil, SchemaErrors{{Index: index, Reason: fmt.Sprintf("not a valid resource object: %v", err)}}
	}

	if raw.Type == nil {
		return nil, SchemaErrors{{Index: index, Field: "type", Reason: "missing resource type"}}
	}
	resourceType, ok := resourceTypeNames[*raw.Type]
	if !ok {
		return nil, SchemaErrors{{Index: index, Field: "type", Reason: fmt.Sprintf("unknown resource type %q", *raw.Type)}}
	}

	switch resourceType {
	case gcf.ResourceTypeBlob:
		return validateBlob(index, &raw)
	case gcf.ResourceTypeImage:
		return validateImage(index, &raw)
	default:
		return nil, SchemaErrors{{Index: index, Field: "type", Reason: fmt.Sprintf("unknown resource type %q", *raw.Type)}}
	}
}
