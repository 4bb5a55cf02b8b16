package commands

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shuttle-hq/shuttle-sub002/internal/api"
	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
	"github.com/shuttle-hq/shuttle-sub002/internal/gateway"
	"github.com/shuttle-hq/shuttle-sub002/internal/project"
	"github.com/shuttle-hq/shuttle-sub002/internal/proxy"
	"github.com/shuttle-hq/shuttle-sub002/internal/runtime"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gateway",
	Long:  `Start the project lifecycle engine, the public reverse proxy and the control-plane API`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	dockerClient, err := backend.NewClient(cfg.Docker.Socket)
	if err != nil {
		return fmt.Errorf("failed to connect to Docker: %w", err)
	}
	be := backend.NewDocker(dockerClient)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	if err := be.EnsureNetwork(ctx, cfg.Docker.NetworkName); err != nil {
		return fmt.Errorf("failed to ensure network %s: %w", cfg.Docker.NetworkName, err)
	}

	registry := gateway.NewRegistry()
	env := &project.Env{
		Backend:  be,
		Registry: registry,
		Health:   runtime.NewHealthClient(runtime.DefaultHealthTimeout),
		Config: project.Config{
			NetworkName:       cfg.Docker.NetworkName,
			Image:             cfg.Docker.Image,
			IdleCPUThreshold:  cfg.Deployment.IdleCPUThreshold,
			StartTimeout:      cfg.Deployment.StartTimeout,
			StopTimeout:       cfg.Docker.StopTimeout,
			TransitionTimeout: cfg.Deployment.TransitionTimeout,
			PollInterval:      cfg.Deployment.PollInterval,
		},
	}

	projects := gateway.NewService(env, registry, cfg.Deployment.TickInterval)
	defer projects.Shutdown()

	resolver := proxy.NewCertResolver()
	if cfg.Proxy.CertsPath != "" {
		if err := loadCertificates(resolver, cfg.Proxy.CertsPath); err != nil {
			return err
		}
	}

	proxyHandler := proxy.NewHandler(cfg.Proxy.FQDN, registry, nil)
	apiServer := api.New(cfg, projects, be, resolver)

	errChan := make(chan error, 3)

	httpProxy := &http.Server{Addr: cfg.Proxy.HTTPAddr, Handler: proxyHandler}
	go func() {
		log.Printf("serving projects under *.%s on %s", cfg.Proxy.FQDN, cfg.Proxy.HTTPAddr)
		if err := httpProxy.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("proxy error: %w", err)
		}
	}()

	var httpsProxy *http.Server
	if cfg.Proxy.TLSEnabled {
		httpsProxy = &http.Server{
			Addr:      cfg.Proxy.HTTPSAddr,
			Handler:   proxyHandler,
			TLSConfig: resolver.TLSConfig(),
		}
		go func() {
			log.Printf("serving TLS on %s", cfg.Proxy.HTTPSAddr)
			if err := httpsProxy.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("tls proxy error: %w", err)
			}
		}()
	}

	go func() {
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("api server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("shutdown signal received")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
	if err := httpProxy.Shutdown(shutdownCtx); err != nil {
		log.Printf("proxy shutdown error: %v", err)
	}
	if httpsProxy != nil {
		if err := httpsProxy.Shutdown(shutdownCtx); err != nil {
			log.Printf("tls proxy shutdown error: %v", err)
		}
	}

	return nil
}

// loadCertificates installs every <hostname>.crt / <hostname>.key pair
// found in dir.
func loadCertificates(resolver *proxy.CertResolver, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read certs path: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".crt") {
			continue
		}

		hostname := strings.TrimSuffix(name, ".crt")
		certPEM, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read certificate %s: %w", name, err)
		}
		keyPEM, err := os.ReadFile(filepath.Join(dir, hostname+".key"))
		if err != nil {
			return fmt.Errorf("failed to read key for %s: %w", hostname, err)
		}

		if err := resolver.AddPEM(hostname, certPEM, keyPEM); err != nil {
			return err
		}
	}

	return nil
}
