package bootstrap

import (
	"time"

	"github.com/kubestrap/kubestrap/internal/k8s"
	"github.com/kubestrap/kubestrap/internal/sshx"
)

// Role assigns a host its place in the cluster.
type Role string

const (
	// RolePrimary is the first control-plane host; cluster initialization
	// runs only here.
	RolePrimary Role = "primary"
	// RoleControlPlane marks additional control-plane members joining after
	// initialization.
	RoleControlPlane Role = "control-plane"
	// RoleWorker marks worker nodes.
	RoleWorker Role = "worker"
)

// Host describes one machine in the fleet. Hosts are immutable once the
// orchestrator starts.
type Host struct {
	Name       string
	Address    string
	Port       int
	User       string
	Credential sshx.Credential
	Role       Role
}

// JoinArtifacts are the secrets extracted from the primary during
// initialization and consumed during the join phase. They are never mutated
// after initialization settles.
type JoinArtifacts struct {
	// WorkerJoinCommand is the raw join command as printed by the primary.
	WorkerJoinCommand string
	// ControlPlaneJoinCommand is the worker command extended with the
	// control-plane flags and certificate key.
	ControlPlaneJoinCommand string
	// AdminKubeconfig is the admin credentials blob fetched off the primary.
	AdminKubeconfig string
}

// State is the orchestrator's position in the bootstrap protocol.
// Transitions are strictly forward; Failed is reachable only from Preparing
// and Initializing.
type State string

const (
	StateNotStarted      State = "not-started"
	StatePreparing       State = "preparing"
	StateInitializing    State = "initializing"
	StateTokensExtracted State = "tokens-extracted"
	StateJoining         State = "joining"
	StateVerifying       State = "verifying"
	StateComplete        State = "complete"
	StateFailed          State = "failed"
)

// Phase names key the per-phase outcome maps on the report.
const (
	PhasePreparation    = "preparation"
	PhaseInitialization = "initialization"
	PhaseJoin           = "join"
	PhaseVerification   = "verification"
)

// PhaseOutcome maps host name to the final result of that host's operation
// in one phase. A missing entry means the operation was skipped because of
// an earlier abort.
type PhaseOutcome map[string]sshx.Result

// WarningKind tags the non-fatal degradations a bootstrap can accumulate.
type WarningKind string

const (
	// WarnTokenExtractionDegraded: init succeeded but credential or token
	// extraction did not; join commands may be absent.
	WarnTokenExtractionDegraded WarningKind = "token-extraction-degraded"
	// WarnJoinFailed: one join group had failing hosts.
	WarnJoinFailed WarningKind = "join-failed"
	// WarnVerificationMismatch: observed membership differs from expected.
	WarnVerificationMismatch WarningKind = "verification-mismatch"
	// WarnVerificationSkipped: no admin credentials to query the cluster with.
	WarnVerificationSkipped WarningKind = "verification-skipped"
)

// Warning is one non-fatal diagnostic attached to the report.
type Warning struct {
	Kind    WarningKind
	Message string
}

// Report is the structured outcome of a full bootstrap run.
type Report struct {
	State     State
	Success   bool
	Artifacts JoinArtifacts
	Phases    map[string]PhaseOutcome
	Warnings  []Warning
	// ExpectedNodes and ObservedNodes carry the verification comparison;
	// Nodes holds the membership records observed, when available.
	ExpectedNodes int
	ObservedNodes int
	Nodes         []k8s.NodeRecord
	// Duration is the wall time of the whole run; PhaseDurations breaks it
	// down per executed phase.
	Duration       time.Duration
	PhaseDurations map[string]time.Duration
}

// Warn appends a warning to the report.
func (r *Report) Warn(kind WarningKind, message string) {
	r.Warnings = append(r.Warnings, Warning{Kind: kind, Message: message})
}

// HasWarning reports whether a warning of the given kind was recorded.
func (r *Report) HasWarning(kind WarningKind) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}
