/*
Package connection holds the named mongo connection definitions of a service, and creates
instrumented database handles from them.

	registry := connection.NewRegistry()
	err := registry.Configure(connection.Config{Name: "primary", URI: uri})
	...
	factory := connection.NewFactory(connection.FactoryConfig{
		Registry: registry,
		Logger:   logger,
		System:   sys,
	})
	db, err := factory.CreateConnection(ctx, "primary", "library")
*/
package connection
