// Package e2e provides end-to-end tests over a corpus of imported articles and questions.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/seshat/internal/models"
)

// usesTitleFormat is the title of the section that answers a topic's question.
const usesTitleFormat = "Where is %s used"

// Topic is one article in the corpus together with the sentences a question
// about it should and should not surface.
type Topic struct {
	Name     string
	Summary  string
	Uses     string
	History  string
	Question string
}

// Article returns the topic as a stored article with a uses section and a
// history section.
func (t Topic) Article() *models.Article {
	return &models.Article{
		Title: t.Name,
		Content: models.Content{
			Summary: t.Summary,
			Sections: []models.Section{
				{Title: "History", Content: t.History},
				{Title: fmt.Sprintf(usesTitleFormat, t.Name), Content: t.Uses},
			},
		},
	}
}

// Corpus holds the topics for E2E tests.
type Corpus struct {
	Topics []Topic
}

// BuildCorpus returns the corpus. Every topic name occurs only in its own article.
func BuildCorpus() *Corpus {
	raw := []struct {
		name, summary, uses, history string
	}{
		{"Python", "Python is a high level programming language. Its syntax favors readability.", "Python is used for scripting and data science.", "Python was first released in 1991."},
		{"Kubernetes", "Kubernetes is an open source container orchestrator. It schedules workloads across a cluster.", "Kubernetes is used to run services in production clusters.", "Kubernetes grew out of an internal scheduler at a search company."},
		{"PostgreSQL", "PostgreSQL is a relational database system. It supports transactions and rich indexing.", "PostgreSQL is used as the primary store of many web applications.", "PostgreSQL descends from a university research project."},
		{"Docker", "Docker packages applications into container images. Images run the same on every host.", "Docker is used to ship reproducible builds.", "Docker was announced at a developer conference in 2013."},
		{"Redis", "Redis is an in-memory data store. It keeps keys and values in RAM.", "Redis is used for caching and session storage.", "Redis started as a side project of an Italian developer."},
		{"Elasticsearch", "Elasticsearch is a distributed search engine. It builds inverted indexes over documents.", "Elasticsearch is used for log analytics and site search.", "Elasticsearch was first released in 2010."},
		{"Terraform", "Terraform describes infrastructure in declarative files. Plans show changes before they apply.", "Terraform is used to provision cloud resources.", "Terraform was first released in 2014."},
		{"Prometheus", "Prometheus is a monitoring system. It scrapes metrics over HTTP.", "Prometheus is used to alert on service health.", "Prometheus joined a cloud foundation in 2016."},
		{"Kafka", "Kafka is a distributed event log. Producers append records to partitioned topics.", "Kafka is used to stream events between services.", "Kafka was built at a professional networking company."},
		{"Nginx", "Nginx is a web server. It handles many connections with an event loop.", "Nginx is used as a reverse proxy and load balancer.", "Nginx was written to solve a concurrency problem."},
		{"GraphQL", "GraphQL is a query language for web services. Clients ask for exactly the fields they need.", "GraphQL is used to aggregate data for mobile clients.", "GraphQL was open sourced in 2015."},
		{"TypeScript", "TypeScript adds static types to JavaScript. The compiler reports type errors early.", "TypeScript is used to build large browser applications.", "TypeScript was first released in 2012."},
		{"Ansible", "Ansible automates configuration over secure shell connections. Playbooks list tasks in order.", "Ansible is used to configure fleets of servers.", "Ansible was first released in 2012."},
		{"Jenkins", "Jenkins is an automation server. Pipelines run builds on agents.", "Jenkins is used for continuous integration.", "Jenkins was forked from an earlier project in 2011."},
		{"Grafana", "Grafana draws dashboards from time series. Panels query many data sources.", "Grafana is used to visualize operational metrics.", "Grafana was first released in 2014."},
		{"Cassandra", "Cassandra is a wide column database. Data is replicated across nodes without a leader.", "Cassandra is used for write heavy workloads.", "Cassandra was open sourced in 2008."},
		{"RabbitMQ", "RabbitMQ is a message broker. Exchanges route messages to queues.", "RabbitMQ is used to decouple producers from consumers.", "RabbitMQ was first released in 2007."},
		{"Consul", "Consul is a service discovery tool. Agents gossip membership across a cluster.", "Consul is used to register and locate services.", "Consul was first released in 2014."},
	}

	topics := make([]Topic, 0, len(raw))
	for _, r := range raw {
		topics = append(topics, Topic{
			Name:     r.name,
			Summary:  r.summary,
			Uses:     r.uses,
			History:  r.history,
			Question: fmt.Sprintf(usesTitleFormat+"?", r.name),
		})
	}
	return &Corpus{Topics: topics}
}

// mentions reports whether any text of t contains word, ignoring case.
func (t Topic) mentions(word string) bool {
	w := strings.ToLower(word)
	for _, s := range []string{t.Name, t.Summary, t.Uses, t.History} {
		if strings.Contains(strings.ToLower(s), w) {
			return true
		}
	}
	return false
}
