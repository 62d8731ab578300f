package enforcement

import (
	"crypto/sha256"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDataIntegrity(t *testing.T) {
	// 1. Ensure the embedded slice is not empty
	if len(PrivilegeScreenPatterns) == 0 {
		t.Fatal("Embedded policy data is empty. Did the build fail to include 'privilege_screen_patterns.yaml'?")
	}

	// 2. Ensure it is valid YAML (The 'Verify' step)
	var dump map[string]interface{}
	if err := yaml.Unmarshal(PrivilegeScreenPatterns, &dump); err != nil {
		t.Fatalf("Embedded data is not valid YAML: %v", err)
	}

	// 3. Ensure we can calculate a hash (The 'Verify' command logic)
	hash := sha256.Sum256(PrivilegeScreenPatterns)
	if len(hash) != 32 {
		t.Errorf("Hash calculation failed, expected 32 bytes, got %d", len(hash))
	}
	t.Logf("Current Policy Hash: %x", hash)

	// 4. Test if the screening rules file is too short
	if len(PrivilegeScreenPatterns) < 30 {
		t.Fatal("there are no privilege screen patterns")
	}
	t.Logf("Embedded privilege screen data size > 0: %d bytes", len(PrivilegeScreenPatterns))
}
