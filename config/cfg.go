package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"cradoc/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// MarginsConfig keeps page margins in millimeters.
	MarginsConfig struct {
		Top    float64 `yaml:"top" validate:"gte=0"`
		Bottom float64 `yaml:"bottom" validate:"gte=0"`
		Left   float64 `yaml:"left" validate:"gte=0"`
		Right  float64 `yaml:"right" validate:"gte=0"`
	}

	// PageConfig describes page geometry in millimeters, width and height are
	// given for portrait orientation.
	PageConfig struct {
		Width       float64                `yaml:"width" validate:"gt=0"`
		Height      float64                `yaml:"height" validate:"gt=0"`
		Orientation common.PageOrientation `yaml:"orientation"`
		Margins     MarginsConfig          `yaml:"margins"`
	}

	FontConfig struct {
		Name           string  `yaml:"name" validate:"required"`
		Size           float64 `yaml:"size" validate:"gt=0,lte=72"`
		SectionSize    float64 `yaml:"section_size" validate:"gt=0,lte=72"`
		SubsectionSize float64 `yaml:"subsection_size" validate:"gt=0,lte=72"`
	}

	CoverConfig struct {
		DefaultImagePath string  `yaml:"default_image_path" sanitize:"assure_file_access"`
		Placeholder      bool    `yaml:"placeholder"`
		ImageWidth       float64 `yaml:"image_width" validate:"gt=0"`
		DateFormat       string  `yaml:"date_format" validate:"required"`
	}

	ImagesConfig struct {
		RemovePNGTransparency bool `yaml:"remove_png_transparency"`
		Optimize              bool `yaml:"optimize"`
		JPEGQuality           int  `yaml:"jpeg_quality_level" validate:"min=40,max=100"`
		FitToPage             bool `yaml:"fit_to_page"`
		SVGWidth              int  `yaml:"svg_width" validate:"min=16,max=8192"`
	}

	MetainformationConfig struct {
		TitleTemplate string `yaml:"title_template"`
		Creator       string `yaml:"creator"`
	}

	DocumentConfig struct {
		FixZip                bool                  `yaml:"fix_zip"`
		Language              string                `yaml:"language" validate:"required,bcp47_language_tag"`
		OutputNameTemplate    string                `yaml:"output_name_template"`
		FileNameTransliterate bool                  `yaml:"file_name_transliterate"`
		Page                  PageConfig            `yaml:"page"`
		Font                  FontConfig            `yaml:"font"`
		Cover                 CoverConfig           `yaml:"cover"`
		Images                ImagesConfig          `yaml:"images"`
		Metainformation       MetainformationConfig `yaml:"metainformation"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
	MetaTitleTemplateFieldName  TemplateFieldName = "title_template"
)

// Templates expanded later against report payload must survive configuration
// processing untouched.
var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(MetaTitleTemplateFieldName)),
)

// Size returns page width and height in millimeters with orientation applied.
func (p *PageConfig) Size() (width, height float64) {
	if p.Orientation.Landscape() {
		return p.Height, p.Width
	}
	return p.Width, p.Height
}

// PrintableWidth returns width of the area between left and right margins.
func (p *PageConfig) PrintableWidth() float64 {
	w, _ := p.Size()
	return w - p.Margins.Left - p.Margins.Right
}

// PrintableHeight returns height of the area between top and bottom margins.
func (p *PageConfig) PrintableHeight() float64 {
	_, h := p.Size()
	return h - p.Margins.Top - p.Margins.Bottom
}

// LanguageTag returns parsed document language, validation guarantees it is
// well formed.
func (d *DocumentConfig) LanguageTag() language.Tag {
	return language.Make(d.Language)
}

// checkPage makes sure margins leave some space for content.
func checkPage(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	page := &cfg.Document.Page
	if page.PrintableWidth() <= 0 {
		sl.ReportError(page.Margins.Left, "Document.Page.Margins.Left", "Left", "printable_width", "")
	}
	if page.PrintableHeight() <= 0 {
		sl.ReportError(page.Margins.Top, "Document.Page.Margins.Top", "Top", "printable_height", "")
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkPage)); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

// Dump returns the provided configuration in a YAML format.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
