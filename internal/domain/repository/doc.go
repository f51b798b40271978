// Package repository define los contratos del Identity Store.
//
// Las interfaces son independientes del almacenamiento; las implementaciones
// concretas viven en internal/store/pg (PostgreSQL) e internal/store/memory.
//
//	┌─────────────────────────────────────────────────────┐
//	│   permission.Resolver / jwt.Codec / http handlers   │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository (interfaces)               │
//	│  UserRepository, GrantReader, TokenRepository, ...  │
//	└─────────────────────────────────────────────────────┘
//	                 │                  │
//	                 ▼                  ▼
//	          ┌─────────────┐    ┌─────────────┐
//	          │  store/pg   │    │ store/memory│
//	          └─────────────┘    └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro.
//   - Toda escritura recibe executorID para los campos de auditoría.
//   - Un id inexistente en lecturas de permisos devuelve vacío, no error.
package repository
