package rollout

import (
	"fmt"
	"log/slog"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClient returns a clientset for kubeconfig. With no explicit path the
// default loading rules apply ($KUBECONFIG, ~/.kube/config); when those yield
// no configuration the in-cluster service account is used.
func NewClient(kubeconfig string) (kubernetes.Interface, error) {
	cfg, err := restConfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("rollout: build clientset: %w", err)
	}
	return client, nil
}

func restConfig(kubeconfig string) (*rest.Config, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	loadingRules.ExplicitPath = kubeconfig
	clientCfg := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{})

	cfg, err := clientCfg.ClientConfig()
	if kubeconfig == "" && clientcmd.IsEmptyConfig(err) {
		slog.Debug("rollout: no kubeconfig found, using in-cluster config")
		cfg, err = rest.InClusterConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("rollout: kubernetes client config: %w", err)
	}
	return cfg, nil
}
