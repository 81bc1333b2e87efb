/*
Package query builds JSON:API collection queries through a chainable Builder.

A Builder accumulates filters, sort keys, include paths, sparse fields and
pagination, renders them with Params, and materializes them by handing the
rendered params to a ports.Resource:

	articles, err := query.New(resource).
		Where(map[string]any{"status": "published"}).
		Order(query.Desc("published_at"), "title").
		Includes(query.Nest("comments", "author", "likes"), "tags").
		Select("title, body").
		Page(2).Per(10).
		ToArray(ctx)

renders

	filter:  {status: published}
	sort:    "-published_at,+title"
	include: "comments.author,comments.likes,tags"
	fields:  {articles: "title,body"}
	page:    {number: 2, size: 10}

Params is pure and may be called any number of times. ToArray (and every
method that reads the result: First, Len, At, Each, Records) materializes at
most once per builder; mutating the builder afterwards does not refetch.
Start a new builder, or Clone one, for each query.

Mutators are not synchronized. Materialization is: concurrent ToArray calls on
one builder share a single Find.
*/
package query
