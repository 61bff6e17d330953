package idhash

import (
	"fmt"

	"github.com/google/uuid"
)

// runNamespace scopes run ids to this project.
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("wallet-credit-lab/run"))

// ComputeRunID computes a deterministic run_id (UUID v5).
// Formula: UUIDv5(namespace, data_version|seed|feature_set)
// Same input, seed and feature set always map to the same run.
func ComputeRunID(dataVersion string, seed uint64, featureSet string) string {
	data := fmt.Sprintf("%s|%d|%s",
		dataVersion,
		seed,
		featureSet,
	)
	return uuid.NewSHA1(runNamespace, []byte(data)).String()
}
