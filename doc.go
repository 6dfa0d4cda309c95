// Package prefixindex provides "begins with" search over arbitrary entities on
// top of a partitioned key-value store.
//
// Indexing a searchable string writes one entry per prefix of the string,
// using the prefix as partition key and the entity's row key as row key. A
// prefix search then becomes an exact partition lookup whose cost depends only
// on the number of matches, not on the size of the index.
//
// # Quick Start
//
//	store := kv.NewMemoryStore() // or dynamodb.New(client), s3.NewStore(...), ...
//
//	byName, _ := prefixindex.NewSingle("peopleByName", store,
//	    func(p Person) string { return p.ID },
//	    prefixindex.WithIndexOptions(prefixindex.IndexOptions{MinLength: 2, MaxLength: 20}),
//	)
//
//	_ = byName.Index(ctx, bill, bill.Name)       // writes "bi", "bil", "bill", ...
//	people, _ := byName.Find(ctx, "BILL", 10)    // case-insensitive by default
//
// # Term Generation
//
// A string of length L is indexed under its prefixes of length MinLength
// through min(L, MaxLength). Strings shorter than MinLength are not indexed;
// strings longer than MaxLength are truncated. Both cases can be turned into
// errors with IndexOptions.ThrowOnMinNotMet and ThrowOnMaxExceeded. No string
// longer than MaxKeyLength characters is accepted.
//
// Deleting generates every prefix from MinLength to the full length, so a
// delete always covers whatever an earlier Index could have written.
//
// # Multiple Indexes
//
// Multi binds several Single indexes, each with its own projection of the
// entity, and keeps them in step:
//
//	people, _ := prefixindex.NewMulti(
//	    prefixindex.Bind[Person](byName, func(p Person) string { return p.Name }),
//	    prefixindex.Bind[Person](byEmail, func(p Person) string { return p.Email }),
//	)
//	_ = people.Index(ctx, bill)
//	found, _ := people.Find(ctx, "bi", prefixindex.DedupeBy(func(p Person) string { return p.ID }), 10)
//
// # Consistency
//
// Term writes of one entity, and sub-index writes of a Multi, run
// concurrently and are not atomic. Every branch runs to completion and the
// first error is returned; branches that succeeded stay applied. Reindex
// deletes before it indexes, so a failure in between leaves the entity
// unindexed until the call is retried.
package prefixindex
