package cluster

import (
	"fmt"
	"log"
	"os"

	consul "github.com/hashicorp/consul/api"
)

// RegisterService registra este processo no Consul com um health check HTTP
// apontando para /health na porta dada. O ID combina nome do serviço e
// hostname, então várias réplicas coexistem sem colidir.
func RegisterService(client *consul.Client, serviceName string, servicePort, healthPort int) error {
	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	serviceID := fmt.Sprintf("%s-%s", serviceName, hostname)

	registration := &consul.AgentServiceRegistration{
		ID:   serviceID,
		Name: serviceName,
		Port: servicePort,
		Check: &consul.AgentServiceCheck{
			// O hostname do contêiner é resolvível por DNS dentro da rede do
			// compose; o agente consegue alcançar o check por ele.
			HTTP:                           fmt.Sprintf("http://%s:%d/health", hostname, healthPort),
			Timeout:                        "5s",
			Interval:                       "10s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("consul registration failed: %w", err)
	}

	log.Printf("[cluster] service %q registered in Consul as %s", serviceName, serviceID)
	return nil
}
