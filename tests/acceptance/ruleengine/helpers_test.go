package acceptance_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	. "github.com/onsi/gomega"
)

// condition mirrors the JSON condition wire shape from spec.md §6.
type condition struct {
	Part     string `json:"part"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
	Negated  bool   `json:"negated,omitempty"`
}

// rule mirrors the JSON rule wire shape from spec.md §6.
type rule struct {
	Name       string      `json:"name"`
	Priority   int         `json:"priority"`
	Conditions []condition `json:"conditions"`
	Result     string      `json:"result"`
}

// runEngine writes rules and urls to a temp directory, invokes the
// rule-engine binary against them, and returns its stdout split into
// "<url> -> <result>" lines.
func runEngine(rules []rule, urls []string) []string {
	dir, err := os.MkdirTemp("", "ruleengine-acceptance-*")
	Expect(err).ToNot(HaveOccurred())

	rulesPath := filepath.Join(dir, "rules.json")
	rulesData, err := json.Marshal(rules)
	Expect(err).ToNot(HaveOccurred())
	Expect(os.WriteFile(rulesPath, rulesData, 0o644)).To(Succeed())

	urlsPath := filepath.Join(dir, "urls.txt")
	Expect(os.WriteFile(urlsPath, []byte(strings.Join(urls, "\n")+"\n"), 0o644)).To(Succeed())

	cmd := exec.Command(binPath, rulesPath, urlsPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err = cmd.Run()
	Expect(err).ToNot(HaveOccurred(), "rule-engine failed: %s", stderr.String())

	out := strings.TrimRight(stdout.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
