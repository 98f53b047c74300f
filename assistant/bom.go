// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nitchau/handyman-sub001/apperr"
	"github.com/nitchau/handyman-sub001/utils/textutil"
	"google.golang.org/genai"
)

const bomInstruction = `You prepare bills of materials for residential home improvement projects.
List every material and consumable needed, with realistic quantities, units and
current US retail unit prices in USD. Answer only with JSON matching the schema.`

// MaxProjectDescription bounds the project description, in characters.
const MaxProjectDescription = 4000

// BOMRequest describes the project to price.
type BOMRequest struct {
	Project string `json:"project"`
	Room    string `json:"room,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Material is one line of a bill of materials.
type Material struct {
	Name      string  `json:"name"`
	Category  string  `json:"category,omitempty"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Notes     string  `json:"notes,omitempty"`
}

// BillOfMaterials is the structured answer of the model.
type BillOfMaterials struct {
	Title         string     `json:"title"`
	Materials     []Material `json:"materials"`
	Tools         []string   `json:"tools,omitempty"`
	EstimatedCost float64    `json:"estimated_cost"`
	Currency      string     `json:"currency"`
}

var bomSchema = &genai.Schema{
	Type:     genai.TypeObject,
	Required: []string{"title", "materials", "estimated_cost", "currency"},
	Properties: map[string]*genai.Schema{
		"title": {Type: genai.TypeString},
		"materials": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type:     genai.TypeObject,
				Required: []string{"name", "quantity", "unit", "unit_price"},
				Properties: map[string]*genai.Schema{
					"name":       {Type: genai.TypeString},
					"category":   {Type: genai.TypeString},
					"quantity":   {Type: genai.TypeNumber},
					"unit":       {Type: genai.TypeString},
					"unit_price": {Type: genai.TypeNumber},
					"notes":      {Type: genai.TypeString},
				},
			},
		},
		"tools":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"estimated_cost": {Type: genai.TypeNumber},
		"currency":       {Type: genai.TypeString},
	},
}

// BillOfMaterials asks the structured model for the materials of a project.
func (s *Service) BillOfMaterials(ctx context.Context, req BOMRequest) (*BillOfMaterials, error) {
	project := textutil.NFC(strings.TrimSpace(req.Project))
	if project == "" {
		return nil, fmt.Errorf("project description is required: %w", apperr.ErrInvalidInput)
	}

	if textutil.CharCount(project) > MaxProjectDescription {
		return nil, fmt.Errorf("project description must be at most %d characters: %w", MaxProjectDescription, apperr.ErrInvalidInput)
	}

	model, err := s.models.StructuredModel(ctx)
	if err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, model, []*genai.Content{genai.NewContentFromText(bomPrompt(project, req), genai.RoleUser)})
	if err != nil {
		return nil, err
	}

	var bom BillOfMaterials
	if err := json.Unmarshal([]byte(stripFence(text)), &bom); err != nil {
		s.logger.Warn("unparseable bill of materials")

		return nil, &GenerationError{Model: "structured", Message: "decoding bill of materials", Err: err}
	}

	if len(bom.Materials) == 0 {
		return nil, &GenerationError{Model: "structured", Message: "bill of materials has no materials"}
	}

	if bom.Currency == "" {
		bom.Currency = "USD"
	}

	if bom.EstimatedCost == 0 {
		for _, m := range bom.Materials {
			bom.EstimatedCost += m.Quantity * m.UnitPrice
		}
	}

	return &bom, nil
}

func bomPrompt(project string, req BOMRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Project: %s\n", project)

	if req.Room != "" {
		fmt.Fprintf(&b, "Room: %s\n", req.Room)
	}

	if req.ZipCode != "" {
		fmt.Fprintf(&b, "Location ZIP code: %s\n", req.ZipCode)
	}

	if req.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", req.Notes)
	}

	return b.String()
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
