package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR_NAME} references in foundry.toml values
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// DetectEnvVar returns the first ${VAR_NAME} reference in a raw value.
func DetectEnvVar(rawValue string) (string, bool) {
	matches := envVarPattern.FindStringSubmatch(rawValue)
	if len(matches) == 2 {
		return matches[1], true
	}
	return "", false
}

// ExpandEnv substitutes ${VAR} references that are set and leaves the
// others in place so an unset variable can be reported by name.
func ExpandEnv(rawValue string) string {
	return envVarPattern.ReplaceAllStringFunc(rawValue, func(ref string) string {
		name := envVarPattern.FindStringSubmatch(ref)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return ref
	})
}

// GenerateEnvVarName generates a conventional env var name for a network's RPC URL.
// Examples: sepolia -> SEPOLIA_RPC_URL, celo-sepolia -> CELO_SEPOLIA_RPC_URL
func GenerateEnvVarName(networkName string) string {
	name := strings.ToUpper(networkName)
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return name + "_RPC_URL"
}
