// Package simulate provides simulated price strategies and the YAML
// scenarios that describe them. The nanoagent race command and engine tests
// use it to exercise racing, scoring and learning without real upstreams.
//
// A scenario file looks like:
//
//	task:
//	  type: price_check
//	  query:
//	    origin: CAI
//	    destination: JED
//	    date: 2026-03-01
//	    passengers: 1
//	rounds: 20
//	seed: 42
//	strategies:
//	  - name: amadeus
//	    reliability: 0.9
//	    expected_latency: 800ms
//	    behavior:
//	      base_price: 340
//	      price_jitter: 15
//	      latency: 200ms
//	      latency_jitter: 100ms
//	      failure_rate: 0.1
//	  - name: kiwi
//	    reliability: 0.8
//	    behavior:
//	      base_price: 350
//	      abstain_rate: 0.2
package simulate
