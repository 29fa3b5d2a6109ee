package report

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cradoc/docx"
	"cradoc/markup"
	"cradoc/richtext"
)

const (
	introText = "This section presents the following information required for CRA (Cyber Resilience Act) compliance:"
	tssText   = "This section describes the Product security functions that satisfy the security functional requirements. " +
		"The Product also includes additional relevant security functions which are also described in the following " +
		"sections, as well as a mapping to the security functional requirements satisfied by the Product."
	rdpsRequirement = "\"If applicable, RDPS dependencies (e.g. a concise dependency map identifying operator, " +
		"data exchanged, trust/authentication, and defined degraded modes) shall be recorded.\""
)

var introItems = []string{
	"Identifies the CRA Documentation and the Product",
	"Specifies the documentation conventions",
	"Describes the organization of the documentation",
}

var contextItems = []string{
	"the product's IPRFU;",
	"the product's functions;",
	"the product's operational environment of use;",
	"the product's architecture overview;",
	"the product's user descriptions.",
}

func (a *assembly) introduction(in *Introduction) {
	subsections := []struct{ number, title, src string }{
		{"1.1", "Documentation Reference", in.DocumentReference},
		{"1.2", "Product Reference", in.ProductReference},
		{"1.3", "Product Overview", in.ProductOverview},
		{"1.4", "Product Description", in.ProductDescription},
	}
	if blank(in.DocumentReference, in.ProductReference, in.ProductOverview, in.ProductDescription) {
		return
	}

	a.pageBreak()
	a.sectionHeading("1. CRA Documentation Introduction")
	a.text(introText, 0)
	for i, item := range introItems {
		after := 0.0
		if i == len(introItems)-1 {
			after = 12
		}
		a.text("• "+item, after)
	}
	for _, s := range subsections {
		if blank(s.src) {
			continue
		}
		a.subsectionHeading(s.number + " " + s.title)
		a.field(s.src)
	}
}

func (a *assembly) riskManagement(rm *RiskManagement, product string) {
	if !rm.hasContent() {
		return
	}

	a.pageBreak()
	a.sectionHeading("5. Risk Management Elements")
	a.reference("[Reference: Clause 6 - Risk management elements]")

	if !blank(rm.GeneralApproach) {
		a.subsectionHeading("5.1 General Approach to Risk Management")
		a.reference("[Reference: Clause 6.1 - General]")
		a.text("This section describes how "+product+" applies risk management throughout its lifecycle "+
			"to ensure an appropriate level of cybersecurity.", 10)
		a.label("Risk Management Framework Applied:")
		a.field(rm.GeneralApproach)
	}

	if pc := rm.ProductContext; pc.hasContent() {
		a.pageBreak()
		a.subsectionHeading("5.2 Product Context")
		a.reference("[Reference: Clause 6.2.1.2 - Product intended purpose and reasonable foreseeable use]")
		a.requirement("Requirement [Clause 6.2.3]:")
		a.requirement("\"The product context shall be identified and recorded based on:")
		for _, item := range contextItems {
			a.requirement("• " + item)
		}
		a.doc.AddText("\"", docx.TextOptions{Style: requirementStyle, SpaceAfter: 12})
		a.block("Intended Purpose:", pc.IntendedPurpose)
		a.block("Reasonably Foreseeable Use & Misuse:", pc.ForeseeableUse)
		a.evidence(pc.Evidence)
	}

	if pf := rm.ProductFunction; pf.hasContent() {
		a.pageBreak()
		a.subsectionHeading("5.3 Product Functions")
		a.reference("[Reference: Clause 6.2.1.3 - Product functions]")
		a.field(pf.PrimaryFunctions)
		a.block("Security Functions", pf.SecurityFunctions)
		a.evidence(pf.Evidence)
	}

	if oe := rm.OperationalEnvironment; oe.hasContent() {
		a.pageBreak()
		a.subsectionHeading("5.4 Product Operational Environment")
		a.reference("[Reference: Clause 6.2.1.4 - Product operational environment]")
		a.block("Physical Environment:", oe.Physical)
		a.block("Network Environment:", oe.Network)
		a.block("System Environment:", oe.System)
		a.block("Operational Constraints:", oe.Constraints)
		if !blank(oe.RDPS) {
			a.label("RDPS Environment (if applicable):")
			italic := requirementStyle
			italic.Italic = true
			a.doc.AddRuns(docx.TextOptions{SpaceAfter: 8},
				docx.Run{Text: "Requirement [Clause 6.2.3]: ", Style: italic},
				docx.Run{Text: rdpsRequirement, Style: italic},
			)
			a.field(oe.RDPS)
		}
		a.evidence(oe.Evidence)
	}
}

// block is labeled rich-text field, skipped when empty.
func (a *assembly) block(label, src string) {
	if blank(src) {
		return
	}
	a.label(label)
	a.field(src)
}

func (a *assembly) securityRequirements(sr *SecurityRequirements) {
	hasSFR, hasSAR := sr.hasSFR(), sr.hasSAR()
	if !hasSFR && !hasSAR {
		return
	}

	a.pageBreak()
	a.sectionHeading("6. Security Requirements")

	if hasSFR {
		a.subsectionHeading("6.1 Security Functional Requirements")
		if !blank(sr.SFRPreview) {
			a.field(sr.SFRPreview)
		} else {
			a.items(sr.SFRs)
		}
	}

	if hasSAR {
		a.subsectionHeading("6.2 Security Assurance Requirements")
		if !blank(sr.SARPreview) {
			a.field(sr.SARPreview)
		} else {
			if eal := strings.TrimSpace(sr.EAL); eal != "" {
				a.doc.AddText("Evaluation Assurance Level: "+eal, docx.TextOptions{Style: richtext.Style{Bold: true}, SpaceAfter: 12})
			}
			a.items(sr.SARs)
		}
	}
}

// items appends list of fields separated by empty paragraphs.
func (a *assembly) items(list []string) {
	for _, src := range list {
		if blank(src) {
			continue
		}
		a.field(src)
		a.text("", 12)
	}
}

func (a *assembly) summarySpecification(src string) {
	if blank(src) {
		return
	}
	a.pageBreak()
	a.sectionHeading("7. Product Summary Specification")
	a.text(tssText, 12)
	a.field(src)
}

var evidenceStatuses = map[string]string{
	"complete":    "Complete",
	"in_progress": "In Progress",
	"not_started": "Not Started",
}

var evidenceHeader = []string{"Evidence Reference", "Title / Artifact", "Status", "Notes"}

// evidenceRows normalizes evidence entries, rows without reference, title
// and notes are dropped.
func evidenceRows(list []Evidence) [][]string {
	var rows [][]string
	for _, e := range list {
		ref, title, notes := strings.TrimSpace(e.Reference), strings.TrimSpace(e.Title), plainText(e.Notes)
		if ref == "" && title == "" && notes == "" {
			continue
		}
		rows = append(rows, []string{ref, title, statusLabel(e.Status), notes})
	}
	return rows
}

func statusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		status = "not_started"
	}
	if label, ok := evidenceStatuses[status]; ok {
		return label
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(status, "_", " "))
}

// plainText returns text content of markup.
func plainText(src string) string {
	if blank(src) {
		return ""
	}
	root, err := markup.Parse(src)
	if err != nil {
		return strings.TrimSpace(src)
	}
	return strings.Join(strings.Fields(root.TextContent()), " ")
}

// evidence appends evidence tracker table.
func (a *assembly) evidence(list []Evidence) {
	rows := evidenceRows(list)
	if len(rows) == 0 {
		return
	}
	a.heading("Evidence Reference:", a.cfg.Font.SubsectionSize, 10, 4)

	t := &richtext.Table{Cols: len(evidenceHeader)}
	t.Rows = append(t.Rows, textRow(evidenceHeader, true))
	for _, r := range rows {
		t.Rows = append(t.Rows, textRow(r, false))
	}
	a.doc.AddTable(t)
	a.log.Debug("Evidence table", zap.Int("rows", len(rows)))
}

func textRow(values []string, header bool) []*richtext.Cell {
	row := make([]*richtext.Cell, len(values))
	for i, v := range values {
		c := &richtext.Cell{Header: header}
		if v != "" {
			c.Paragraph.Items = []richtext.Item{{Kind: richtext.ItemText, Text: v, Style: richtext.Style{Bold: header}}}
		}
		row[i] = c
	}
	return row
}
