package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/crowdmint/deployer/internal/domain"
	"github.com/crowdmint/deployer/internal/domain/config"
	"github.com/crowdmint/deployer/internal/domain/models"
	"github.com/crowdmint/deployer/internal/usecase"
)

// Repository discovers and indexes compiled contract artifacts
type Repository struct {
	artifactsDir  string
	contracts     map[string][]*models.Contract // key: "source:contractName", several when built with more than one compiler
	contractNames map[string][]*models.Contract // key: contract name, value: all contracts with that name
	artifacts     map[string]*models.Contract   // key: artifact path relative to artifactsDir
	log           *slog.Logger
	mu            sync.RWMutex
	indexed       bool
}

// NewRepository creates a new artifact repository for the configured artifacts directory
func NewRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	return NewRepositoryAt(cfg.ArtifactsDir, log)
}

// NewRepositoryAt creates a new artifact repository rooted at dir
func NewRepositoryAt(dir string, log *slog.Logger) *Repository {
	return &Repository{
		artifactsDir:  dir,
		log:           log,
		contracts:     make(map[string][]*models.Contract),
		contractNames: make(map[string][]*models.Contract),
		artifacts:     make(map[string]*models.Contract),
	}
}

// Index walks the artifacts directory once
func (i *Repository) Index() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.indexed {
		return nil
	}

	i.contracts = make(map[string][]*models.Contract)
	i.contractNames = make(map[string][]*models.Contract)
	i.artifacts = make(map[string]*models.Contract)

	if info, err := os.Stat(i.artifactsDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: artifacts directory %s not found, compile the contracts first", domain.ErrArtifactUnavailable, i.artifactsDir)
	}

	err := filepath.WalkDir(i.artifactsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
			return nil
		}
		return i.processArtifact(path)
	})
	if err != nil {
		return fmt.Errorf("failed to index artifacts: %w", err)
	}

	i.log.Debug("indexed artifacts", "dir", i.artifactsDir, "contracts", len(i.artifacts))
	i.indexed = true
	return nil
}

// processArtifact processes a single artifact file
func (i *Repository) processArtifact(artifactPath string) error {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return err
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		// Not every JSON file in the tree is an artifact
		i.log.Debug("skipping non-artifact file", "path", artifactPath, "error", err)
		return nil
	}

	sourceName, contractName := artifact.Target()
	if contractName == "" {
		return nil
	}

	relArtifactPath, _ := filepath.Rel(i.artifactsDir, artifactPath)

	info := &models.Contract{
		Name:         contractName,
		Path:         sourceName,
		ArtifactPath: relArtifactPath,
		Artifact:     &artifact,
	}

	i.contracts[info.Key()] = append(i.contracts[info.Key()], info)
	i.contractNames[info.Name] = append(i.contractNames[info.Name], info)
	i.artifacts[filepath.ToSlash(relArtifactPath)] = info

	return nil
}

// GetContract retrieves a deployable contract by key (name, source:name or artifact path)
func (i *Repository) GetContract(ctx context.Context, key string) (*models.Contract, error) {
	if err := i.Index(); err != nil {
		return nil, err
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	contract, err := i.lookup(key)
	if err != nil {
		return nil, err
	}

	if contract.Artifact.Bytecode.Empty() {
		return nil, fmt.Errorf("%w: %s has no creation bytecode (interface or abstract contract?)", domain.ErrArtifactUnavailable, key)
	}
	if !contract.Artifact.Bytecode.Linked() {
		return nil, fmt.Errorf("%w: %s references unlinked libraries", domain.ErrArtifactUnavailable, key)
	}

	return contract, nil
}

func (i *Repository) lookup(key string) (*models.Contract, error) {
	if contract, exists := i.artifacts[filepath.ToSlash(key)]; exists {
		return contract, nil
	}

	matches, exists := i.contracts[key]
	if !exists {
		matches = i.contractNames[key]
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", domain.ErrContractNotFound, key)
	case 1:
		return matches[0], nil
	default:
		return nil, domain.AmbiguousContractErr{Name: key, Matches: matchKeys(matches)}
	}
}

// matchKeys names each candidate by source:name, or by artifact path when
// the same source:name was built more than once.
func matchKeys(matches []*models.Contract) []string {
	seen := lo.CountValuesBy(matches, (*models.Contract).Key)

	return lo.Map(matches, func(m *models.Contract, _ int) string {
		if seen[m.Key()] > 1 {
			return filepath.ToSlash(m.ArtifactPath)
		}
		return m.Key()
	})
}

var _ usecase.ArtifactRepository = (*Repository)(nil)
