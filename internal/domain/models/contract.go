package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Contract represents a compiled contract discovered in the artifacts directory
type Contract struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	ArtifactPath string    `json:"artifactPath,omitempty"`
	Artifact     *Artifact `json:"artifact,omitempty"`
}

// Key returns the fully qualified "source:name" identifier
func (c *Contract) Key() string {
	return fmt.Sprintf("%s:%s", c.Path, c.Name)
}

// BytecodeObject holds creation bytecode. Hardhat writes it as a hex string,
// Foundry as {"object": "0x..."}; both decode into Object.
type BytecodeObject struct {
	Object         string         `json:"object"`
	LinkReferences map[string]any `json:"linkReferences,omitempty"`
}

func (b *BytecodeObject) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &b.Object)
	}
	type plain BytecodeObject
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = BytecodeObject(p)
	return nil
}

// Empty reports whether there is no creation code (interfaces, abstract contracts)
func (b BytecodeObject) Empty() bool {
	o := strings.TrimPrefix(b.Object, "0x")
	return o == ""
}

// Linked reports whether all library placeholders have been resolved
func (b BytecodeObject) Linked() bool {
	return !strings.Contains(b.Object, "__")
}

// Bytes decodes the hex bytecode
func (b BytecodeObject) Bytes() ([]byte, error) {
	if !b.Linked() {
		return nil, fmt.Errorf("bytecode contains unlinked library references")
	}
	return hexutil.Decode("0x" + strings.TrimPrefix(b.Object, "0x"))
}

// Artifact represents a Hardhat or Foundry compilation artifact
type Artifact struct {
	Format       string           `json:"_format,omitempty"`
	ContractName string           `json:"contractName,omitempty"`
	SourceName   string           `json:"sourceName,omitempty"`
	ABI          json.RawMessage  `json:"abi"`
	Bytecode     BytecodeObject   `json:"bytecode"`
	Metadata     ArtifactMetadata `json:"metadata"`
}

// ArtifactMetadata is the part of Foundry's metadata section needed to name a contract
type ArtifactMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

// Target returns the source path and contract name of the artifact
func (a *Artifact) Target() (source, name string) {
	if a.ContractName != "" {
		return a.SourceName, a.ContractName
	}
	for s, n := range a.Metadata.Settings.CompilationTarget {
		return s, n
	}
	return "", ""
}
