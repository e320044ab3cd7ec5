package e2e

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/vladimirvivien/gexe/exec"
)

const (
	upTarget   = "local.profile-saga"
	downTarget = "local.delete.profile-saga"
)

// makeVars are the variables of the compose project of one test.
func makeVars(conf TestConfig) map[string]string {
	return map[string]string{
		"PROJECT_NAME":      conf.ProjectName,
		"KAFKA_TOPIC":       conf.KafkaTopic,
		"DLQ_S3_BUCKET":     conf.DLQS3Bucket,
		"ARCHIVE_S3_BUCKET": conf.ArchiveS3Bucket,
	}
}

// makeCommand builds the make invocation from the repository root, variables sorted for readable logs.
func makeCommand(target string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("make -C ../.. ")
	sb.WriteString(target)

	for _, key := range keys {
		fmt.Fprintf(&sb, " %s=%s", key, vars[key])
	}

	return sb.String()
}

func runMake(target string, vars map[string]string) error {
	var output bytes.Buffer

	proc := exec.NewProc(makeCommand(target, vars))
	proc.Command().Stdout = &output
	proc.Command().Stderr = &output

	proc.Start().Wait()

	err := proc.Err()
	if err != nil {
		return fmt.Errorf("make %s failed (%w): %s", target, err, output.String())
	}

	return nil
}
