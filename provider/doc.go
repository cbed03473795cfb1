// Mapper resolution for smile content binding.
/*
The provider package decides which smile.Mapper a given call should use, without
performing any encoding itself. SmileProvider is the entry point: hosting
frameworks check Matches() during content negotiation and call ResolveMapper()
(or the ReadFrom / WriteTo helpers) once a body needs to be bound.

Resolution always succeeds. An explicitly configured mapper wins over dynamic
discovery through a MapperProvider registry, which in turn wins over the
lazily-created default mapper cached for the life of the provider.
*/
package provider
