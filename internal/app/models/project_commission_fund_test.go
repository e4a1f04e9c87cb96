package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestResolveProjectDecision(t *testing.T) {
	tests := []struct {
		name      string
		decisions []*bool
		status    ProjectStatus
		resolved  bool
	}{
		{"no submissions", nil, "", false},
		{"single pending", []*bool{nil}, "", false},
		{"one pending blocks", []*bool{boolPtr(true), nil}, "", false},
		{"all validated", []*bool{boolPtr(true), boolPtr(true)}, ProjectValidated, true},
		{"all rejected", []*bool{boolPtr(false), boolPtr(false)}, ProjectRejected, true},
		{"mixed stays processing", []*bool{boolPtr(true), boolPtr(false)}, ProjectProcessing, true},
		{"single validated", []*bool{boolPtr(true)}, ProjectValidated, true},
		{"single rejected", []*bool{boolPtr(false)}, ProjectRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submissions := make([]*ProjectCommissionFund, 0, len(tt.decisions))
			for _, d := range tt.decisions {
				submissions = append(submissions, &ProjectCommissionFund{IsValidatedByAdmin: d})
			}

			status, resolved := ResolveProjectDecision(submissions)
			assert.Equal(t, tt.resolved, resolved)
			assert.Equal(t, tt.status, status)
		})
	}
}
