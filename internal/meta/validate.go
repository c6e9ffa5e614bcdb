package meta

import (
	"fmt"
	"math"
	"strings"

	"gcfpack/internal/gcf"
)

var resourceTypeNames = map[string]gcf.ResourceType{
	"blob":  gcf.ResourceTypeBlob,
	"image": gcf.ResourceTypeImage,
}

var containerFlagNames = map[string]gcf.ContainerFlags{
	"unpadded": gcf.ContainerFlagUnpadded,
}

var resourceFlagNames = map[string]gcf.ResourceFlags{
	"no-compression-hint": gcf.ResourceFlagNoCompressionHint,
}

var blobFormatNames = map[string]gcf.Format{
	"raw": gcf.FormatRaw,
}

var imageFormatNames = map[string]gcf.Format{
	"r8_unorm":       gcf.FormatR8Unorm,
	"r8g8_unorm":     gcf.FormatR8G8Unorm,
	"r8g8b8_unorm":   gcf.FormatR8G8B8Unorm,
	"r8g8b8a8_unorm": gcf.FormatR8G8B8A8Unorm,
	"b8g8r8a8_unorm": gcf.FormatB8G8R8A8Unorm,
}

func validateHeader(raw *rawHeader) (Header, SchemaErrors) {
	if raw == nil {
		return Header{}, SchemaErrors{{Index: -1, Field: "header", Reason: "missing header object"}}
	}

	var errs SchemaErrors
	header := Header{Version: SupportedVersion}

	if raw.Version == nil {
		errs = append(errs, &SchemaError{Index: -1, Field: "version", Reason: "missing format version"})
	} else if *raw.Version != SupportedVersion {
		errs = append(errs, &SchemaError{Index: -1, Field: "version", Reason: fmt.Sprintf("unsupported format version %d (want %d)", *raw.Version, SupportedVersion)})
	}

	for _, name := range raw.Flags {
		flag, ok := containerFlagNames[name]
		if !ok {
			errs = append(errs, &SchemaError{Index: -1, Field: "flags", Reason: fmt.Sprintf("unknown container flag %q", name)})
			continue
		}
		header.Flags |= flag
	}

	if len(raw.Tags) > 0 {
		header.Tags = make(map[string]string, len(raw.Tags))
		for k, v := range raw.Tags {
			header.Tags[k] = v
		}
	}

	return header, errs
}

func validateBlob(index int, raw *rawResource) (Resource, SchemaErrors) {
	var errs SchemaErrors

	structural := []struct {
		field   string
		present bool
	}{
		{"width", raw.Width != nil},
		{"height", raw.Height != nil},
		{"depth", raw.Depth != nil},
		{"mip_count", raw.MipCount != nil},
	}
	for _, f := range structural {
		if f.present {
			errs = append(errs, &SchemaError{Index: index, Field: f.field, Reason: "not legal for blob resources"})
		}
	}

	format := gcf.FormatRaw
	if raw.Format != nil {
		parsed, ok := blobFormatNames[*raw.Format]
		if !ok {
			errs = append(errs, &SchemaError{Index: index, Field: "format", Reason: fmt.Sprintf("unknown blob format %q", *raw.Format)})
		} else {
			format = parsed
		}
	}

	source, sourceErrs := validateSource(index, raw.Source)
	errs = append(errs, sourceErrs...)

	flags, flagErrs := validateResourceFlags(index, raw.Flags)
	errs = append(errs, flagErrs...)

	if len(errs) > 0 {
		return nil, errs
	}
	return &BlobResource{SourcePath: source, DataFormat: format, ResourceFlags: flags}, nil
}

func validateImage(index int, raw *rawResource) (Resource, SchemaErrors) {
	var errs SchemaErrors

	var format gcf.Format
	if raw.Format == nil {
		errs = append(errs, &SchemaError{Index: index, Field: "format", Reason: "image resources require a pixel format"})
	} else {
		parsed, ok := imageFormatNames[*raw.Format]
		if !ok {
			errs = append(errs, &SchemaError{Index: index, Field: "format", Reason: fmt.Sprintf("unknown image format %q", *raw.Format)})
		} else {
			format = parsed
		}
	}

	width, widthErrs := validateDimension(index, "width", raw.Width, true, math.MaxUint32)
	errs = append(errs, widthErrs...)
	height, heightErrs := validateDimension(index, "height", raw.Height, true, math.MaxUint32)
	errs = append(errs, heightErrs...)
	depth, depthErrs := validateDimension(index, "depth", raw.Depth, false, math.MaxUint16)
	errs = append(errs, depthErrs...)
	mipCount, mipErrs := validateDimension(index, "mip_count", raw.MipCount, false, gcf.MaxMipCount)
	errs = append(errs, mipErrs...)

	source, sourceErrs := validateSource(index, raw.Source)
	errs = append(errs, sourceErrs...)

	flags, flagErrs := validateResourceFlags(index, raw.Flags)
	errs = append(errs, flagErrs...)

	if len(errs) > 0 {
		return nil, errs
	}
	return &ImageResource{
		SourcePath:    source,
		DataFormat:    format,
		ResourceFlags: flags,
		Width:         uint32(width),
		Height:        uint32(height),
		Depth:         uint16(depth),
		MipCount:      uint8(mipCount),
	}, nil
}

// validateDimension checks a structural numeric field. Optional fields
// default to 1 when absent; every dimension must be positive and fit its
// wire field.
func validateDimension(index int, field string, value *int64, required bool, max int64) (int64, SchemaErrors) {
	if value == nil {
		if required {
			return 0, SchemaErrors{{Index: index, Field: field, Reason: "required for image resources"}}
		}
		return 1, nil
	}
	if *value <= 0 {
		return 0, SchemaErrors{{Index: index, Field: field, Reason: fmt.Sprintf("must be positive, got %d", *value)}}
	}
	if *value > max {
		return 0, SchemaErrors{{Index: index, Field: field, Reason: fmt.Sprintf("%d exceeds the limit of %d", *value, max)}}
	}
	return *value, nil
}

// validateSource performs the syntactic half of source checking. Whether the
// file exists is deliberately not checked here; schema validation stays free
// of filesystem access.
func validateSource(index int, source *string) (string, SchemaErrors) {
	if source == nil || strings.TrimSpace(*source) == "" {
		return "", SchemaErrors{{Index: index, Field: "source", Reason: "missing source path"}}
	}
	return *source, nil
}

func validateResourceFlags(index int, names []string) (gcf.ResourceFlags, SchemaErrors) {
	var flags gcf.ResourceFlags
	var errs SchemaErrors
	for _, name := range names {
		flag, ok := resourceFlagNames[name]
		if !ok {
			errs = append(errs, &SchemaError{Index: index, Field: "flags", Reason: fmt.Sprintf("unknown resource flag %q", name)})
			continue
		}
		flags |= flag
	}
	return flags, errs
}
