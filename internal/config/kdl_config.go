package config

import (
	"fmt"
	"log"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL starts from the defaults and overrides whatever the document sets.
//
//	matching {
//	    fuzzy_threshold 0.85
//	    enable_context true
//	}
//	orchestrator { chunk_threshold 10000 }
//	vocabulary {
//	    builtin true
//	    paths "vocab/**/*.toml" "extra.yaml"
//	}
func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "matching":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "fuzzy_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Matching.FuzzyThreshold = v
					}
				case "partial_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Matching.PartialThreshold = v
					}
				case "overlap_margin":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Matching.OverlapMargin = v
					}
				case "enable_fuzzy":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Matching.EnableFuzzy = b
					}
				case "enable_context":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Matching.EnableContext = b
					}
				case "similarity_cache_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Matching.SimilarityCacheSize = v
					}
				}
			}
		case "orchestrator":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "chunk_threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.Orchestrator.ChunkThreshold = v
					}
				case "chunk_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Orchestrator.ChunkSize = v
					}
				case "chunk_overlap":
					if v, ok := firstIntArg(cn); ok {
						cfg.Orchestrator.ChunkOverlap = v
					}
				case "result_cache_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Orchestrator.ResultCacheSize = v
					}
				case "max_workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Orchestrator.MaxWorkers = v
					}
				}
			}
		case "preservation":
			for _, cn := range n.Children {
				if nodeName(cn) == "high_confidence" {
					if v, ok := firstFloatArg(cn); ok {
						cfg.Preservation.HighConfidence = v
					}
				}
			}
		case "vocabulary":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "builtin":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Vocabulary.UseBuiltin = b
					}
				case "base_dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Vocabulary.BaseDir = s
					}
				case "paths":
					cfg.Vocabulary.Paths = append(cfg.Vocabulary.Paths, collectStringArgs(cn)...)
				}
			}
		}
	}

	return cfg, nil
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		log.Printf("WARNING: invalid float value for '%s' in KDL config, expected number but got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// Inline form: paths "a" "b"
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block form: paths { "a"; "b" } where each child node name is the value
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}
