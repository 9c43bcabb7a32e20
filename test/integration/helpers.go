//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

const fakeKey = "sk_test_integration"

// TestConfig holds configuration for integration tests
type TestConfig struct {
	APIKey     string
	APIBase    string
	BinaryPath string
	Verbose    bool
	// Live is set when the tests talk to the real API in test mode.
	Live bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	apiKey := os.Getenv("STRIPE_API_KEY")

	return &TestConfig{
		APIKey:     apiKey,
		APIBase:    os.Getenv("STRIPE_API_BASE"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("ASYNCSTRIPE_VERBOSE") == "true",
		Live:       strings.HasPrefix(apiKey, "sk_test_"),
	}
}

// getBinaryPath determines the path to the asyncstripe binary
func getBinaryPath() string {
	if path := os.Getenv("ASYNCSTRIPE_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../asyncstripe",
		"./asyncstripe",
		"../asyncstripe",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "asyncstripe"
}

// SkipIfMissingConfig skips test if the binary is missing or a live key is
// not a test mode key.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.APIKey != "" && !config.Live {
		t.Skip("STRIPE_API_KEY is not a test mode key, skipping integration test")
	}

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("asyncstripe binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner provides utilities for running asyncstripe commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
	env    []string
}

// NewCommandRunner creates a new command runner. Without a live key it starts
// the binary's fake server and points every command at it.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	runner := &CommandRunner{
		config: config,
		t:      t,
	}

	configFile := t.TempDir() + "/config.yml"
	runner.env = append(os.Environ(), "STRIPE_CONFIG="+configFile)

	if config.Live {
		runner.env = append(runner.env, "STRIPE_API_KEY="+config.APIKey)
		if config.APIBase != "" {
			runner.env = append(runner.env, "STRIPE_API_BASE="+config.APIBase)
		}

		return runner
	}

	addr := freeAddr(t)
	server := exec.Command(config.BinaryPath, "fake-server", "--addr", addr)
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start fake server: %v", err)
	}

	t.Cleanup(func() {
		_ = server.Process.Signal(os.Interrupt)
		_ = server.Wait()
	})

	WaitForCondition(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()

		return true
	}, 10*time.Second, "fake server to accept connections")

	runner.env = append(runner.env,
		"STRIPE_API_KEY="+fakeKey,
		"STRIPE_API_BASE=http://"+addr,
	)

	return runner
}

func freeAddr(t *testing.T) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().String()
}

// Run executes an asyncstripe command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes an asyncstripe command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = runner.env
	cmd.Stdin = strings.NewReader(input)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes a command with JSON output and decodes the result.
func (runner *CommandRunner) RunJSON(args ...string) (map[string]interface{}, error) {
	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, stderr)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", stdout, err)
	}

	return decoded, nil
}

// ChargeSourceArgs returns the flags that pay for a test charge.
func (runner *CommandRunner) ChargeSourceArgs() []string {
	if runner.config.Live {
		return []string{"--source", "tok_visa"}
	}

	return []string{
		"-p", "card[number]=4242424242424242",
		"-p", "card[exp_month]=12",
		"-p", "card[exp_year]=2030",
	}
}

// GenerateTestEmail creates a unique address for a test customer
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@integration.test", prefix, time.Now().UnixNano())
}

// CleanupCustomer attempts to delete a test customer
func (runner *CommandRunner) CleanupCustomer(id string) {
	stdout, stderr, err := runner.Run("customers", "delete", id)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for customer %s: %s\nStderr: %s", id, stdout, stderr)
	}
}

// WaitForCondition waits for a condition to be met with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		if condition() {
			return
		}

		select {
		case <-ticker.C:
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	var decoded interface{}
	if err := yaml.Unmarshal([]byte(output), &decoded); err != nil || decoded == nil {
		t.Errorf("Output does not appear to be YAML: %s", output)
	}
}
