// Nanoagent races price strategies against each other, keeps the cheapest
// valid quote and learns which strategies deserve to be tried first.
//
// Usage:
//
//	# Race the strategies of a scenario file
//	nanoagent race --scenario configs/scenario.yaml
//
//	# Expose metrics and health endpoints while racing
//	nanoagent race --scenario configs/scenario.yaml --metrics-addr :9090 --hold
//
//	# Validate configuration and a scenario
//	nanoagent validate --scenario configs/scenario.yaml
//
//	# Show or reset persisted strategy weights
//	nanoagent weights list
//	nanoagent weights reset kiwi
package main

func main() {
	Execute()
}
