package rollout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/informers"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/cache"
	"k8s.io/client-go/util/workqueue"

	"github.com/realworks/configserver/controller/internal/config"
)

// Controller watches ConfigMaps and runs the Reconciler for every ConfigMap
// that was added or whose resourceVersion changed.
type Controller struct {
	reconciler *Reconciler
	factory    informers.SharedInformerFactory
	informer   cache.SharedIndexInformer
	queue      workqueue.RateLimitingInterface
	maxRetries int
}

// NewController builds a Controller for client using cfg.
func NewController(client kubernetes.Interface, cfg config.ControllerConfig) (*Controller, error) {
	var opts []informers.SharedInformerOption
	if cfg.Namespace != "" {
		opts = append(opts, informers.WithNamespace(cfg.Namespace))
	}
	factory := informers.NewSharedInformerFactoryWithOptions(client, cfg.Resync, opts...)

	c := &Controller{
		reconciler: &Reconciler{
			Client:            client,
			UsedAnnotation:    cfg.UsedAnnotation,
			VersionAnnotation: cfg.VersionAnnotation,
		},
		factory:    factory,
		informer:   factory.Core().V1().ConfigMaps().Informer(),
		queue:      workqueue.NewNamedRateLimitingQueue(workqueue.DefaultControllerRateLimiter(), "configmaps"),
		maxRetries: cfg.MaxRetries,
	}

	if _, err := c.informer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc:    c.enqueue,
		UpdateFunc: c.onUpdate,
	}); err != nil {
		return nil, fmt.Errorf("rollout: register configmap handler: %w", err)
	}
	return c, nil
}

// Run starts the informer and workers and blocks until ctx is cancelled.
func (c *Controller) Run(ctx context.Context, workers int) error {
	c.factory.Start(ctx.Done())
	defer c.factory.Shutdown()

	slog.Info("rollout: waiting for configmap cache to sync")
	if !cache.WaitForCacheSync(ctx.Done(), c.informer.HasSynced) {
		c.queue.ShutDown()
		return fmt.Errorf("rollout: configmap cache did not sync")
	}

	slog.Info("rollout: controller started", "workers", workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wait.UntilWithContext(ctx, c.runWorker, time.Second)
		}()
	}

	<-ctx.Done()
	slog.Info("rollout: controller stopping")
	c.queue.ShutDown()
	wg.Wait()
	return nil
}

func (c *Controller) enqueue(obj interface{}) {
	key, err := cache.MetaNamespaceKeyFunc(obj)
	if err != nil {
		slog.Error("rollout: cannot build key", "err", err)
		return
	}
	c.queue.Add(key)
}

// onUpdate enqueues only when the resourceVersion moved; periodic resyncs
// deliver identical objects and must not cause rollouts.
func (c *Controller) onUpdate(oldObj, newObj interface{}) {
	oldCM, ok := oldObj.(*corev1.ConfigMap)
	if !ok {
		return
	}
	newCM, ok := newObj.(*corev1.ConfigMap)
	if !ok {
		return
	}
	if oldCM.ResourceVersion == newCM.ResourceVersion {
		return
	}
	c.enqueue(newObj)
}

func (c *Controller) runWorker(ctx context.Context) {
	for c.processNextItem(ctx) {
	}
}

// processNextItem handles one queue key. It returns false once the queue
// has been shut down.
func (c *Controller) processNextItem(ctx context.Context) bool {
	item, shutdown := c.queue.Get()
	if shutdown {
		return false
	}
	defer c.queue.Done(item)

	key, ok := item.(string)
	if !ok {
		c.queue.Forget(item)
		return true
	}
	namespace, name, err := cache.SplitMetaNamespaceKey(key)
	if err != nil {
		slog.Error("rollout: invalid queue key", "key", key, "err", err)
		c.queue.Forget(item)
		return true
	}

	if err := c.reconciler.Reconcile(ctx, namespace, name); err != nil {
		if c.queue.NumRequeues(item) < c.maxRetries {
			slog.Warn("rollout: reconcile failed, requeueing", "key", key, "err", err)
			c.queue.AddRateLimited(item)
			return true
		}
		slog.Error("rollout: reconcile failed, dropping key", "key", key, "err", err)
	}
	c.queue.Forget(item)
	return true
}
