// Package staging provisions the scratch directories repositories pass
// through while they are replicated between instances.
package staging
