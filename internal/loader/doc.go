// Package loader reads component scripts from sources and compiles them
// into a component registry.
//
// A component is a Lua script named after its tag, for example
// components/my-header.lua. The script either returns a function or
// defines a global named render. The function receives a context table
// and returns markup:
//
//	return function(ctx)
//	  return ctx.html(
//	    "<style>h1{color:red;}</style>",
//	    "<h1>", ctx.escape(ctx.attrs.title or ""), "<slot></slot></h1>"
//	  )
//	end
//
// The context table holds:
//
//	ctx.html(...)      concatenates strings, numbers and arrays of them
//	ctx.escape(s)      escapes text for HTML
//	ctx.attrs          element attributes
//	ctx.slot           the element's children as markup
//	ctx.state.store    the initial state, or nil
//
// Sources are directories, embedded file systems, in-memory maps and S3
// buckets. Load compiles every source into one registry and fails if two
// sources define the same tag.
package loader
