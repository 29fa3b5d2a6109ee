package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cradoc/common"
)

// Payload is the complete input of a single report. Every rich-text field
// holds markup in Format dialect, empty fields are skipped.
type Payload struct {
	Format                    common.PayloadFormat `yaml:"format"`
	Cover                     *Cover               `yaml:"cover"`
	Introduction              Introduction         `yaml:"introduction"`
	SecurityProblemDefinition string               `yaml:"security_problem_definition"`
	ConformanceClaims         string               `yaml:"conformance_claims"`
	SecurityObjectives        string               `yaml:"security_objectives"`
	RiskManagement            *RiskManagement      `yaml:"risk_management"`
	SecurityRequirements      SecurityRequirements `yaml:"security_requirements"`
	SummarySpecification      string               `yaml:"summary_specification"`
}

// Cover is plain text except Image which is either file path (relative to
// payload location) or data URI.
type Cover struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Version      string `yaml:"version"`
	Revision     string `yaml:"revision"`
	Manufacturer string `yaml:"manufacturer"`
	Date         string `yaml:"date"`
	Image        string `yaml:"image"`
}

type Introduction struct {
	DocumentReference  string `yaml:"document_reference"`
	ProductReference   string `yaml:"product_reference"`
	ProductOverview    string `yaml:"product_overview"`
	ProductDescription string `yaml:"product_description"`
}

type RiskManagement struct {
	GeneralApproach        string                  `yaml:"general_approach"`
	ProductContext         *ProductContext         `yaml:"product_context"`
	ProductFunction        *ProductFunction        `yaml:"product_function"`
	OperationalEnvironment *OperationalEnvironment `yaml:"operational_environment"`
}

type ProductContext struct {
	IntendedPurpose string     `yaml:"intended_purpose"`
	ForeseeableUse  string     `yaml:"foreseeable_use"`
	Evidence        []Evidence `yaml:"evidence"`
}

type ProductFunction struct {
	PrimaryFunctions  string     `yaml:"primary_functions"`
	SecurityFunctions string     `yaml:"security_functions"`
	Evidence          []Evidence `yaml:"evidence"`
}

type OperationalEnvironment struct {
	Physical    string     `yaml:"physical"`
	Network     string     `yaml:"network"`
	System      string     `yaml:"system"`
	Constraints string     `yaml:"constraints"`
	RDPS        string     `yaml:"rdps"`
	Evidence    []Evidence `yaml:"evidence"`
}

// Evidence is a row of evidence tracker table. Notes may carry markup, only
// its text is used.
type Evidence struct {
	Reference string `yaml:"reference"`
	Title     string `yaml:"title"`
	Status    string `yaml:"status"`
	Notes     string `yaml:"notes"`
}

// SecurityRequirements previews take precedence over item lists.
type SecurityRequirements struct {
	SFRPreview string   `yaml:"sfr_preview"`
	SFRs       []string `yaml:"sfrs"`
	SARPreview string   `yaml:"sar_preview"`
	SARs       []string `yaml:"sars"`
	EAL        string   `yaml:"eal"`
}

// ErrEmptyPayload is returned when payload has nothing to build.
var ErrEmptyPayload = errors.New("payload is empty")

// DecodePayload reads YAML or JSON payload. Unknown fields are rejected.
func DecodePayload(r io.Reader) (*Payload, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Payload
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyPayload
		}
		return nil, fmt.Errorf("unable to decode payload: %w", err)
	}
	if !p.Format.IsValid() {
		return nil, fmt.Errorf("unable to decode payload: %w", common.ErrInvalidPayloadFormat)
	}
	if p.IsEmpty() {
		return nil, ErrEmptyPayload
	}
	return &p, nil
}

// LoadPayload reads payload from file.
func LoadPayload(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read payload: %w", err)
	}
	p, err := DecodePayload(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// IsEmpty reports whether payload would produce a document without content.
func (p *Payload) IsEmpty() bool {
	return p.Cover == nil &&
		blank(p.Introduction.DocumentReference, p.Introduction.ProductReference,
			p.Introduction.ProductOverview, p.Introduction.ProductDescription,
			p.SecurityProblemDefinition, p.ConformanceClaims, p.SecurityObjectives,
			p.SummarySpecification) &&
		!p.RiskManagement.hasContent() &&
		!p.SecurityRequirements.hasSFR() && !p.SecurityRequirements.hasSAR()
}

// ProductName is used in boilerplate referring to the product.
func (p *Payload) ProductName() string {
	if p.Cover != nil {
		if t := strings.TrimSpace(p.Cover.Title); t != "" {
			return t
		}
	}
	return "[Product Name]"
}

func (rm *RiskManagement) hasContent() bool {
	if rm == nil {
		return false
	}
	return !blank(rm.GeneralApproach) || rm.ProductContext.hasContent() ||
		rm.ProductFunction.hasContent() || rm.OperationalEnvironment.hasContent()
}

func (pc *ProductContext) hasContent() bool {
	return pc != nil && (!blank(pc.IntendedPurpose, pc.ForeseeableUse) || len(evidenceRows(pc.Evidence)) > 0)
}

func (pf *ProductFunction) hasContent() bool {
	return pf != nil && (!blank(pf.PrimaryFunctions, pf.SecurityFunctions) || len(evidenceRows(pf.Evidence)) > 0)
}

func (oe *OperationalEnvironment) hasContent() bool {
	return oe != nil && (!blank(oe.Physical, oe.Network, oe.System, oe.Constraints, oe.RDPS) || len(evidenceRows(oe.Evidence)) > 0)
}

func (sr *SecurityRequirements) hasSFR() bool {
	return !blank(sr.SFRPreview) || !blank(sr.SFRs...)
}

func (sr *SecurityRequirements) hasSAR() bool {
	return !blank(sr.SARPreview) || !blank(sr.SARs...)
}

// blank is true when every value is empty or whitespace.
func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
