package tree

import "github.com/custodia-labs/mapping-builder/internal/core/domain"

// sampleTree builds an unhydrated tree:
//
//	root
//	├── a
//	│   └── a1
//	└── b
func sampleTree() *domain.NodeMapping {
	return &domain.NodeMapping{
		Name:   "root",
		SID:    "sid",
		Source: ".",
		Children: []*domain.NodeMapping{
			{
				Name:   "a",
				Source: "a",
				Children: []*domain.NodeMapping{
					{Name: "a1", Source: "a1"},
				},
			},
			{Name: "b", Source: "b"},
		},
	}
}

func names(ms []*domain.NodeMapping) []string {
	result := make([]string, 0, len(ms))
	for _, m := range ms {
		result = append(result, m.Name)
	}
	return result
}
