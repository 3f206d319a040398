package plugins

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/ports"
	"github.com/cpsdqs/prechoster/pkg/value"
)

// KindDataFile is a source module holding an embedded binary file.
const KindDataFile = "data-file"

// DataFileConfig configures a data-file module.
type DataFileConfig struct {
	MimeType string `mapstructure:"mime_type" validate:"required"`
	Data     string `mapstructure:"data" validate:"omitempty,base64"`
}

// DataFile emits its data as a Blob held in a BlobStore. The blob is
// released with the evaluation result.
type DataFile struct {
	Blobs ports.BlobStore
}

var _ plugin.Capability = DataFile{}

func (DataFile) Kind() string             { return KindDataFile }
func (DataFile) AcceptsInputs() bool      { return false }
func (DataFile) AcceptsNamedInputs() bool { return false }

func (DataFile) DefaultConfig() (map[string]any, error) {
	return encodeConfig(DataFileConfig{MimeType: value.TypeBytes})
}

func (DataFile) Describe(config map[string]any) string {
	var cfg DataFileConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return "data file"
	}
	return fmt.Sprintf("%s, %d bytes", cfg.MimeType, base64.StdEncoding.DecodedLen(len(cfg.Data)))
}

func (d DataFile) Transform(ctx context.Context, config map[string]any, _ []value.Value, _ map[string]value.Value, opts *plugin.TransformOptions) (value.Value, error) {
	var cfg DataFileConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrInvalidConfig, err)
	}
	blob, err := d.Blobs.Put(ctx, cfg.MimeType, data)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	if opts != nil && opts.UserData != nil {
		opts.UserData["size"] = len(data)
	}
	return blob, nil
}
