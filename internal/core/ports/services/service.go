package services

// ServiceContainer holds instances of all the application services.
// Each binary populates the services it serves; the rest stay nil.
type ServiceContainer struct {
	Transaction TransactionSvcFacade
	Reconciler  StockReconcilerSvc
	Product     ProductSvcFacade
}
