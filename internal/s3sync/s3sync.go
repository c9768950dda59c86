// Package s3sync maps local Airflow directories onto their S3 locations and
// builds the `aws s3 sync` invocation.
package s3sync

import (
	"fmt"

	"github.com/ae-kit/tools/internal/cli/config"
	"github.com/ae-kit/tools/internal/shell"
)

// Excludes are never uploaded.
var Excludes = []string{"**/.DS_Store", "**/__pycache__/**", ".DS_Store"}

// Pair is a local directory and the S3 URI it syncs to.
type Pair struct {
	Source    string
	SourceKey string
	Target    string
	TargetKey string
}

// Mapping holds the configured source/target pairs.
type Mapping struct {
	pairs []Pair
}

// FromConfig builds the mapping from the aws-info block.
func FromConfig(aws config.AWSConfig) Mapping {
	return Mapping{pairs: []Pair{
		{Source: aws.DagRoot, SourceKey: "aws-info.dag-root", Target: aws.S3DagLocation, TargetKey: "aws-info.s3-dag-location"},
		{Source: aws.PluginsRoot, SourceKey: "aws-info.plugins-root", Target: aws.S3PluginsLocation, TargetKey: "aws-info.s3-plugins-location"},
	}}
}

// Sources returns the configured local roots, skipping empty ones.
func (m Mapping) Sources() []string {
	var out []string
	for _, p := range m.pairs {
		if p.Source != "" {
			out = append(out, p.Source)
		}
	}
	return out
}

// Target returns the S3 location for src.
func (m Mapping) Target(src string) (string, error) {
	if src == "" {
		return "", fmt.Errorf("no sync source configured: set %s or %s", m.pairs[0].SourceKey, m.pairs[1].SourceKey)
	}
	for _, p := range m.pairs {
		if p.Source != src {
			continue
		}
		if p.Target == "" {
			return "", fmt.Errorf("%s is not set for %s", p.TargetKey, src)
		}
		return p.Target, nil
	}
	return "", fmt.Errorf("%s is not a configured sync source", src)
}

// Args returns the aws argv syncing src to dst.
func Args(src, dst string, dryRun bool) []string {
	args := []string{"s3", "sync", src, dst}
	for _, ex := range Excludes {
		args = append(args, "--exclude", ex)
	}
	if dryRun {
		args = append(args, "--dryrun")
	}
	return args
}

// Command returns the aws command syncing src to dst.
func Command(src, dst string, dryRun bool) shell.Command {
	return shell.Command{Name: "aws", Args: Args(src, dst, dryRun)}
}
