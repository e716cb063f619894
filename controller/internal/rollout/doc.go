// Package rollout restarts Deployments when the ConfigMap they mount changes.
//
// The config server never watches its file, so fresh ConfigMap content only
// reaches clients after its pods are replaced. A Deployment opts in with the
// metadata annotation
//
//	configMapUsed: <configmap name>
//
// and the controller keeps
//
//	spec.template.metadata.annotations.configMapVersion: <resourceVersion>
//
// in step with the ConfigMap, which makes Kubernetes roll the pods. Both
// annotation keys are configurable.
package rollout
