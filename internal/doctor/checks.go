package doctor

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// TargetType distinguishes files from directories in a permission check.
type TargetType string

const (
	TargetFile      TargetType = "file"
	TargetDirectory TargetType = "directory"
)

// Target is one path inspected by PathPermissionCheck.
type Target struct {
	// Label names the path in output, e.g. "host config".
	Label string
	Path  string
	Type  TargetType

	// MaxPerm is the most permissive mode accepted for a file. Zero skips
	// the comparison.
	MaxPerm os.FileMode
}

// PathPermissionCheck validates paths and permissions of the files mcpfed
// reads and writes.
type PathPermissionCheck struct {
	PermissionFixer
	targets []Target
}

var (
	_ Check = (*PathPermissionCheck)(nil)
	_ Fixer = (*PathPermissionCheck)(nil)
)

// NewPathPermissionCheck creates a path permission check over targets.
func NewPathPermissionCheck(targets ...Target) *PathPermissionCheck {
	return &PathPermissionCheck{targets: targets}
}

// Name returns the unique identifier for this check.
func (c *PathPermissionCheck) Name() string {
	return "path-permissions"
}

// Category returns the grouping for this check.
func (c *PathPermissionCheck) Category() string {
	return "filesystem"
}

// Run executes the path and permission diagnostic check.
func (c *PathPermissionCheck) Run() *CheckResult {
	var issues []pathIssue
	checked := 0

	for _, target := range c.targets {
		if target.Path == "" {
			continue
		}
		checked++
		switch target.Type {
		case TargetDirectory:
			issues = append(issues, c.checkDirectory(target)...)
		default:
			issues = append(issues, c.checkFile(target)...)
		}
	}

	c.setIssues(issues)
	return c.buildResult(issues, checked)
}

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Label       string
	Type        TargetType
	Problem     string
	Severity    Severity
	Permissions string // octal representation if available
	Fixable     bool
	FixHint     string

	// targetPerm is applied by the fixer.
	targetPerm os.FileMode
}

// checkFile validates a file path and permissions.
func (c *PathPermissionCheck) checkFile(target Target) []pathIssue {
	info, err := os.Stat(target.Path)
	if os.IsNotExist(err) {
		// Not created yet
		return nil
	}
	if err != nil {
		return []pathIssue{{
			Path:     target.Path,
			Label:    target.Label,
			Type:     TargetFile,
			Problem:  fmt.Sprintf("cannot stat file: %v", err),
			Severity: SeverityError,
		}}
	}

	if info.IsDir() {
		return []pathIssue{{
			Path:     target.Path,
			Label:    target.Label,
			Type:     TargetFile,
			Problem:  "expected file but found directory",
			Severity: SeverityError,
		}}
	}

	f, err := os.Open(target.Path)
	if err != nil {
		return []pathIssue{{
			Path:        target.Path,
			Label:       target.Label,
			Type:        TargetFile,
			Problem:     "file is not readable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+r " + target.Path,
		}}
	}
	f.Close()

	// Unix permissions don't apply on Windows
	if runtime.GOOS == "windows" {
		return nil
	}
	return c.checkFilePermissions(target, info.Mode())
}

// checkDirectory validates a directory path and permissions.
func (c *PathPermissionCheck) checkDirectory(target Target) []pathIssue {
	info, err := os.Stat(target.Path)
	if os.IsNotExist(err) {
		// Created on first write
		return nil
	}
	if err != nil {
		return []pathIssue{{
			Path:     target.Path,
			Label:    target.Label,
			Type:     TargetDirectory,
			Problem:  fmt.Sprintf("cannot stat directory: %v", err),
			Severity: SeverityError,
		}}
	}

	if !info.IsDir() {
		return []pathIssue{{
			Path:     target.Path,
			Label:    target.Label,
			Type:     TargetDirectory,
			Problem:  "expected directory but found file",
			Severity: SeverityError,
		}}
	}

	var issues []pathIssue
	if writable, err := isDirectoryWritable(target.Path); err != nil || !writable {
		issues = append(issues, pathIssue{
			Path:        target.Path,
			Label:       target.Label,
			Type:        TargetDirectory,
			Problem:     "directory is not writable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + target.Path,
		})
	}

	if runtime.GOOS != "windows" && info.Mode().Perm()&0o002 != 0 {
		issues = append(issues, pathIssue{
			Path:        target.Path,
			Label:       target.Label,
			Type:        TargetDirectory,
			Problem:     "directory is world-writable (security risk)",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     "chmod 755 " + target.Path,
			targetPerm:  secureDirPerm,
		})
	}

	return issues
}

// checkFilePermissions validates file permissions for security concerns.
func (c *PathPermissionCheck) checkFilePermissions(target Target, mode os.FileMode) []pathIssue {
	perm := mode.Perm()
	maxPerm := target.MaxPerm
	if maxPerm == 0 {
		maxPerm = secureFilePerm
	}

	if perm&0o002 != 0 {
		return []pathIssue{{
			Path:        target.Path,
			Label:       target.Label,
			Type:        TargetFile,
			Problem:     "file is world-writable (security risk)",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			Fixable:     true,
			FixHint:     fmt.Sprintf("chmod %s %s", formatOctal(maxPerm), target.Path),
			targetPerm:  maxPerm,
		}}
	}

	// Launch specs carry API keys in env; the files should not be more
	// open than their expected mode.
	if perm&^maxPerm != 0 {
		return []pathIssue{{
			Path:        target.Path,
			Label:       target.Label,
			Type:        TargetFile,
			Problem:     fmt.Sprintf("file has overly permissive permissions (mode %s, expected %s or less)", formatPermissions(mode), formatOctal(maxPerm)),
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			Fixable:     true,
			FixHint:     fmt.Sprintf("chmod %s %s", formatOctal(maxPerm), target.Path),
			targetPerm:  maxPerm,
		}}
	}

	return nil
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func isDirectoryWritable(path string) (bool, error) {
	tmpFile, err := os.CreateTemp(path, ".mcpfed-doctor-test-*")
	if err != nil {
		return false, err
	}

	tmpPath := tmpFile.Name()
	tmpFile.Close()
	os.Remove(tmpPath)

	return true, nil
}

// buildResult constructs the final CheckResult from accumulated issues.
func (c *PathPermissionCheck) buildResult(issues []pathIssue, checked int) *CheckResult {
	if len(issues) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("all %d paths have valid permissions", checked),
		}
	}

	highestSeverity := SeverityPass
	for _, issue := range issues {
		if issue.Severity > highestSeverity {
			highestSeverity = issue.Severity
		}
	}

	issueDetails := make([]map[string]any, 0, len(issues))
	fixable := false
	var fixHints []string
	for _, issue := range issues {
		issueMap := map[string]any{
			"path":     issue.Path,
			"label":    issue.Label,
			"type":     string(issue.Type),
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			issueMap["permissions"] = issue.Permissions
		}
		if issue.FixHint != "" {
			issueMap["fix_hint"] = issue.FixHint
		}
		issueDetails = append(issueDetails, issueMap)

		if issue.Fixable {
			fixable = true
			if issue.FixHint != "" {
				fixHints = append(fixHints, issue.FixHint)
			}
		}
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   highestSeverity,
		Message:  fmt.Sprintf("found %d permission issue(s) across %d paths", len(issues), checked),
		Details: map[string]any{
			"checked_paths": checked,
			"issue_count":   len(issues),
			"issues":        issueDetails,
		},
		Fixable: fixable,
	}

	if len(fixHints) > 0 {
		result.FixHint = strings.Join(fixHints, "; ")
	}

	return result
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

// formatOctal returns the octal representation of a file mode.
func formatOctal(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode)
}
