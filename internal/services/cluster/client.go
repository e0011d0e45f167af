package cluster

import (
	"fmt"
	"log"
	"strings"

	consul "github.com/hashicorp/consul/api"
)

// NewConsulClient tenta uma lista de endereços (separados por vírgula) até
// achar um agente com líder eleito. Em deploys com múltiplos nós Consul, a
// conexão inicial sobrevive à queda de qualquer nó individual.
func NewConsulClient(addrs string) (*consul.Client, error) {
	for _, node := range strings.Split(addrs, ",") {
		node = strings.TrimSpace(node)
		cfg := consul.DefaultConfig()
		cfg.Address = node

		client, err := consul.NewClient(cfg)
		if err != nil {
			log.Printf("[cluster] could not build client for %s: %v", node, err)
			continue
		}

		if _, err := client.Status().Leader(); err != nil {
			log.Printf("[cluster] %s has no leader: %v", node, err)
			continue
		}

		log.Printf("[cluster] connected to Consul node %s", node)
		return client, nil
	}

	return nil, fmt.Errorf("no Consul node reachable in: %s", addrs)
}
