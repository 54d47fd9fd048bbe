package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"firebasebindings/internal/binding"
)

var _ binding.ConfigLoader = (*EnvConfigLoader)(nil)

// EnvConfigLoader resolves dotted keys such as "firebase.project_id" from the
// environment first ("<PREFIX>_FIREBASE_PROJECT_ID") and then from a YAML map.
type EnvConfigLoader struct {
	envPrefix string
	yamlData  map[string]any
}

// NewEnvConfigLoader creates a new environment-based config loader
func NewEnvConfigLoader(envPrefix string, yamlData map[string]any) *EnvConfigLoader {
	if yamlData == nil {
		yamlData = make(map[string]any)
	}

	return &EnvConfigLoader{
		envPrefix: envPrefix,
		yamlData:  yamlData,
	}
}

func (e *EnvConfigLoader) Get(key string) (string, bool) {
	if value := os.Getenv(e.buildEnvKey(key)); value != "" {
		return value, true
	}
	return e.lookupYAML(key)
}

func (e *EnvConfigLoader) GetWithDefault(key, defaultValue string) string {
	if value, ok := e.Get(key); ok {
		return value
	}
	return defaultValue
}

func (e *EnvConfigLoader) GetBool(key string) (bool, bool) {
	value, ok := e.Get(key)
	if !ok {
		return false, false
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return b, true
}

func (e *EnvConfigLoader) GetBoolWithDefault(key string, defaultValue bool) bool {
	if value, ok := e.GetBool(key); ok {
		return value
	}
	return defaultValue
}

func (e *EnvConfigLoader) GetInt(key string) (int, bool) {
	value, ok := e.Get(key)
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (e *EnvConfigLoader) GetIntWithDefault(key string, defaultValue int) int {
	if value, ok := e.GetInt(key); ok {
		return value
	}
	return defaultValue
}

// HasPrefix returns every scalar key under prefix. Environment values win
// over YAML values for the same key.
func (e *EnvConfigLoader) HasPrefix(prefix string) map[string]string {
	result := make(map[string]string)

	e.collectYAMLWithPrefix(prefix, "", e.yamlData, result)

	envPrefix := e.buildEnvKey(prefix)
	for _, env := range os.Environ() {
		envKey, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(envKey, envPrefix) {
			continue
		}
		result[e.envKeyToConfigKey(envKey)] = value
	}

	return result
}

func (e *EnvConfigLoader) buildEnvKey(key string) string {
	envKey := strings.NewReplacer(".", "_", "-", "_").Replace(key)
	envKey = strings.ToUpper(envKey)

	if e.envPrefix != "" {
		return e.envPrefix + "_" + envKey
	}
	return envKey
}

// envKeyToConfigKey maps FBGATEWAY_FIREBASE_PROJECT_ID to firebase.project.id.
// Underscores inside a key name cannot be told apart from section separators.
func (e *EnvConfigLoader) envKeyToConfigKey(envKey string) string {
	configKey := envKey
	if e.envPrefix != "" {
		configKey = strings.TrimPrefix(configKey, e.envPrefix+"_")
	}
	return strings.ReplaceAll(strings.ToLower(configKey), "_", ".")
}

func (e *EnvConfigLoader) lookupYAML(key string) (string, bool) {
	var current any = e.yamlData
	for part := range strings.SplitSeq(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		if current, ok = m[part]; !ok {
			return "", false
		}
	}
	return scalarString(current)
}

func (e *EnvConfigLoader) collectYAMLWithPrefix(prefix, currentPath string, data map[string]any, result map[string]string) {
	for key, value := range data {
		fullPath := key
		if currentPath != "" {
			fullPath = currentPath + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			e.collectYAMLWithPrefix(prefix, fullPath, nested, result)
			continue
		}

		if !strings.HasPrefix(fullPath, prefix) {
			continue
		}
		if s, ok := scalarString(value); ok {
			result[fullPath] = s
		}
	}
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case int, int64, float64, bool:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}
