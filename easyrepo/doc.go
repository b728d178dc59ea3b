/*
Package easyrepo provides a generic Service-Repository abstraction on top of
the tablestore client.

The goal of this package is to reduce boilerplate in Go microservices,
delivering:
  - Automatic input validation via struct tags (validator/v10).
  - Standardized CRUD operations with generics support.
  - BeforeCreate and BeforeUpdate hooks for custom business rules.
  - Optimistic concurrency on updates and deletes through row stamps.

Usage:

	type User struct {
		tablestore.Entity
		Name  string `dynamodbav:"name" validate:"required"`
		Email string `dynamodbav:"email" validate:"required,email"`
	}

	service, _ := easyrepo.NewService[User](table)
	user := &User{Name: "Ada", Email: "ada@example.com"}
	user.PartitionKey, user.RowKey = "users", "u-1"
	err := service.Create(ctx, user)
*/
package easyrepo
