// Package router wires the RBAC stores, services and routes for a server binary.
//
//	components, err := router.NewComponents(router.Options{
//		Persistence: "postgres",
//		Pool:        pool,
//	})
//	router.SetupRoutes(server.R, router.Config{
//		Prefix: "/api/rbac",
//		Handle: components.Handle,
//	})
package router
