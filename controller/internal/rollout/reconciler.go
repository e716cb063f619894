package rollout

import (
	"context"
	"fmt"
	"log/slog"

	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Reconciler brings Deployments in line with the current version of the
// ConfigMap they declare they use.
type Reconciler struct {
	Client kubernetes.Interface

	// UsedAnnotation is read from Deployment metadata and names the ConfigMap.
	UsedAnnotation string

	// VersionAnnotation is written to the pod template and holds the
	// ConfigMap resourceVersion the pods were started with.
	VersionAnnotation string
}

// Reconcile stamps the resourceVersion of ConfigMap namespace/name into the
// pod template of every Deployment in namespace that references it. Changing
// the template triggers a rolling update. A ConfigMap that no longer exists
// is not an error.
func (r *Reconciler) Reconcile(ctx context.Context, namespace, name string) error {
	cm, err := r.Client.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		slog.Debug("rollout: configmap gone, nothing to do", "namespace", namespace, "configmap", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("rollout: get configmap %s/%s: %w", namespace, name, err)
	}
	version := cm.ResourceVersion

	deployments, err := r.deploymentsUsing(ctx, namespace, name)
	if err != nil {
		return err
	}

	for i := range deployments {
		d := &deployments[i]
		if d.Spec.Template.Annotations[r.VersionAnnotation] == version {
			slog.Debug("rollout: deployment already at configmap version",
				"deployment", d.Name, "namespace", d.Namespace, "version", version)
			continue
		}

		slog.Info("rollout: configmap changed, updating deployment",
			"configmap", name,
			"deployment", d.Name,
			"namespace", d.Namespace,
			"version", version,
		)
		if d.Spec.Template.Annotations == nil {
			d.Spec.Template.Annotations = make(map[string]string)
		}
		d.Spec.Template.Annotations[r.VersionAnnotation] = version

		if _, err := r.Client.AppsV1().Deployments(d.Namespace).Update(ctx, d, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("rollout: update deployment %s/%s: %w", d.Namespace, d.Name, err)
		}
	}
	return nil
}

// deploymentsUsing lists the Deployments in namespace whose UsedAnnotation
// names the ConfigMap.
func (r *Reconciler) deploymentsUsing(ctx context.Context, namespace, configMap string) ([]appsv1.Deployment, error) {
	list, err := r.Client.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("rollout: list deployments in %s: %w", namespace, err)
	}

	var out []appsv1.Deployment
	for _, d := range list.Items {
		if d.Annotations[r.UsedAnnotation] == configMap {
			out = append(out, d)
		}
	}
	return out, nil
}
