// SPDX-License-Identifier: MIT

// Package config loads estimator settings from YAML and turns them into
// feols options.
//
//	demean:
//	  tolerance: 1e-8
//	  max_sweeps: 10000
//	  accel_every: 3
//	  accelerate: true
//	  workers: 0          # 0 = GOMAXPROCS
//	solver:
//	  collinearity: error # error | drop | pinv
//	  rank_tol: 1e-7
//	vcov:
//	  scheme: iid         # iid | hetero | HC0..HC3 | CRV1
//	drop_singletons: false
//	fixef:
//	  recover: false
//	log:
//	  level: info
//	  development: false
package config
