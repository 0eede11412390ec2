// Package k8s provides a read-only Kubernetes client used to verify cluster
// membership after bootstrap. It consumes the node-status API; it never
// manages the cluster itself.
package k8s

import (
	"context"
	"fmt"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// nodeRoleLabelPrefix marks the role labels kubeadm puts on nodes.
const nodeRoleLabelPrefix = "node-role.kubernetes.io/"

// NodeRecord is one cluster member as reported by the node-status API.
type NodeRecord struct {
	Name       string
	Ready      bool
	Roles      []string
	Version    string
	InternalIP string
}

// Client wraps the cluster query operations needed for verification.
type Client struct {
	clientset kubernetes.Interface
}

// NewFromKubeconfig builds a client from raw admin kubeconfig bytes, as
// fetched off the primary node during initialization.
func NewFromKubeconfig(kubeconfig []byte) (*Client, error) {
	cfg, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig from bytes: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewFromClientset wraps an existing clientset. Used by tests with the fake
// clientset.
func NewFromClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// Nodes returns the current cluster membership, sorted by node name.
func (c *Client) Nodes(ctx context.Context) ([]NodeRecord, error) {
	list, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	records := make([]NodeRecord, 0, len(list.Items))
	for i := range list.Items {
		records = append(records, recordFromNode(&list.Items[i]))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// recordFromNode flattens the node object down to the fields verification
// consumes.
func recordFromNode(node *corev1.Node) NodeRecord {
	rec := NodeRecord{
		Name:    node.Name,
		Ready:   isNodeReady(node),
		Roles:   nodeRoles(node),
		Version: node.Status.NodeInfo.KubeletVersion,
	}
	for _, addr := range node.Status.Addresses {
		if addr.Type == corev1.NodeInternalIP {
			rec.InternalIP = addr.Address
			break
		}
	}
	return rec
}

// isNodeReady checks the node's Ready condition.
func isNodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

// nodeRoles extracts role names from kubeadm's node-role labels.
func nodeRoles(node *corev1.Node) []string {
	var roles []string
	for label := range node.Labels {
		if role, ok := strings.CutPrefix(label, nodeRoleLabelPrefix); ok && role != "" {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	return roles
}
