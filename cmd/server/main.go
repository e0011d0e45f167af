package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cardbattle/internal/api"
	"cardbattle/internal/game/card"
	"cardbattle/internal/game/player"
	"cardbattle/internal/gateway"
	"cardbattle/internal/network"
	"cardbattle/internal/services/cluster"
	"cardbattle/internal/services/relay"
	"cardbattle/internal/session"
)

// ============================================================================
// Constantes de Configuração Padrão
// ============================================================================
const (
	defaultServiceName = "cardbattle-coordinator"
	defaultServicePort = 8080
)

// ============================================================================
// Lógica de Configuração
// ============================================================================

// Config armazena todas as configurações da aplicação.
type Config struct {
	ServiceName string
	ServicePort int

	// Opcionais: vazio desliga a integração correspondente.
	ConsulAddr string
	NATSURL    string
}

// loadConfig carrega a configuração a partir de variáveis de ambiente.
func loadConfig() (*Config, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	servicePortStr := os.Getenv("SERVICE_PORT")
	if servicePortStr == "" {
		servicePortStr = fmt.Sprintf("%d", defaultServicePort)
	}
	servicePort, err := strconv.Atoi(servicePortStr)
	if err != nil {
		return nil, fmt.Errorf("formato de SERVICE_PORT inválido: %w", err)
	}

	return &Config{
		ServiceName: serviceName,
		ServicePort: servicePort,
		ConsulAddr:  os.Getenv("CONSUL_HTTP_ADDR"),
		NATSURL:     os.Getenv("NATS_URL"),
	}, nil
}

// ============================================================================
// Função Main
// ============================================================================
func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Fatal: Falha ao carregar configuração: %v", err)
	}
	log.Printf("[Main] Configuração: ServiceName=%s, Port=%d, Consul=%q, NATS=%q",
		cfg.ServiceName, cfg.ServicePort, cfg.ConsulAddr, cfg.NATSURL)

	// Catálogo e diretório de jogadores.
	if err := card.InitGlobalCatalog(); err != nil {
		log.Fatalf("Falha fatal ao inicializar o catálogo de cartas: %v", err)
	}
	log.Printf("[Main] Catálogo inicializado com %d cartas.", card.CatalogSize())

	directory := player.NewDirectory(nil)

	// Relay de resultados (opcional).
	var rl *relay.Relay
	if cfg.NATSURL != "" {
		rl, err = relay.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("Fatal: Falha ao conectar no NATS: %v", err)
		}
	}

	// Gateway <-> Registry: o gateway é o Notifier das sessões, e precisa do
	// registry para resolver códigos de convite.
	gw := gateway.New(directory)
	deps := session.Deps{Directory: directory, Notifier: gw}
	if rl != nil {
		deps.Recorder = rl
	}
	registry := session.NewRegistry(deps)
	gw.SetRegistry(registry)

	// Um mux só: WebSocket, API REST e health check na mesma porta.
	mux := http.NewServeMux()

	netServer := network.NewServer(gw)
	netServer.Attach(mux)

	api.RegisterHandlers(mux, directory, registry)

	health := cluster.NewHealthAggregator()
	health.AddCheck("catalog", func() error {
		if card.CatalogSize() == 0 {
			return fmt.Errorf("card catalog is empty")
		}
		return nil
	})
	health.AddCheck("relay", rl.Healthy)
	mux.HandleFunc("/health", health.Handler())

	// Registro no Consul, se configurado.
	if cfg.ConsulAddr != "" {
		consulClient, err := cluster.NewConsulClient(cfg.ConsulAddr)
		if err != nil {
			log.Fatalf("Fatal: %v", err)
		}
		if err := cluster.RegisterService(consulClient, cfg.ServiceName, cfg.ServicePort, cfg.ServicePort); err != nil {
			log.Fatalf("Fatal: %v", err)
		}
	}

	address := fmt.Sprintf("0.0.0.0:%d", cfg.ServicePort)
	srv := &http.Server{Addr: address, Handler: mux}

	go func() {
		log.Printf("[Main] Servidor (WebSocket & HTTP) escutando em %s.", address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Falha fatal no servidor: %v", err)
		}
	}()

	// Desligamento limpo: derruba atores de sessão, drena o relay e fecha o
	// servidor HTTP.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Main] Sinal de desligamento recebido.")

	registry.Shutdown()
	rl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[Main] Shutdown do servidor HTTP falhou: %v", err)
	}
	log.Println("[Main] Encerrado.")
}
