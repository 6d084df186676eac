/*
Package ddb provides the DynamoDB implementation of the datastore contracts.

Every entity kind lives in its own table, keyed by UserId (hash, S) and EntityId (range, N).
A Provisioner creates missing tables on first use; stores built over the same Provisioner
share its state, so a process provisions once no matter how many stores or goroutines
touch it first:

	client, _ := ddb.NewClient(ctx, ddb.ClientConfig{Region: "us-west-2"})
	catalog := registry.DefaultCatalog()
	prov, _ := ddb.NewProvisioner(client, catalog, ddb.WithWaitForActive(2*time.Minute))
	recipes, _ := ddb.NewEntityStore[storagemodels.Recipe](client, catalog, prov)

	r := storagemodels.NewRecipe("user-1", "Tikka Masala")
	if !recipes.Save(ctx, r) {
	    // provisioning failed, r was invalid, or DynamoDB rejected the write
	}

The boolean methods (Save, Retrieve, Delete, ListForPartition) fold every failure into
false, nil or an empty slice. Put, Get, Remove and List return the typed errors of the
errors package instead.

Streaming:
Stream pages through a partition with retries for throttling and server faults:

	for r := range recipes.Stream(ctx, "user-1",
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	) {
	    if r.Error != nil { ... }
	}

Time filters:
Query builds partition queries filtered on LastUpdateTime:

	recent, err := recipes.Query("user-1").InLastDays(7).Limit(20).All(ctx)

Optimistic locking:
WithOptimisticLocking makes writes of versioned kinds (Recipe) conditional on the stored
VersionNumber. Without it writes are last-write-wins.
*/
package ddb
