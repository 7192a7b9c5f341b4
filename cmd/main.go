package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nuestros paquetes de infraestructura y utilitarios
	"efectivofacil/config"
	_ "efectivofacil/docs"
	"efectivofacil/internal/pkg/cache"
	"efectivofacil/internal/pkg/database"
	"efectivofacil/internal/pkg/demo"
	"efectivofacil/internal/pkg/logger"

	// Capas de la aplicación para Inyección de Dependencias
	"efectivofacil/internal/api/cashout"
	"efectivofacil/internal/api/estadisticas"
	"efectivofacil/internal/api/inventario"
	"efectivofacil/internal/api/router"
	"efectivofacil/internal/api/taller"
	"efectivofacil/internal/api/transaccion"
	"efectivofacil/internal/repository/inventariorepo"
	"efectivofacil/internal/repository/tallerrepo"
	"efectivofacil/internal/repository/transaccionrepo"
	"efectivofacil/internal/service/cashoutservice"
	"efectivofacil/internal/service/estadisticasservice"
	"efectivofacil/internal/service/inventarioservice"
	"efectivofacil/internal/service/tallerservice"
	"efectivofacil/internal/service/transaccionservice"
)

// @title Efectivo Fácil API
// @version 1.0
// @description Backend de cash-out para talleres textiles: comisiones, lotes, inventario y estadísticas.
// @BasePath /api
func main() {
	// 1. Configuración e Inicialización
	log.Println("⚡ Inicializando servicio Efectivo Fácil...")

	// 0. CARGAR VARIABLES DE ENTORNO (.env)
	if err := godotenv.Load(); err != nil {
		// Si no hay archivo .env seguimos: las variables esenciales pueden
		// venir del ambiente del sistema (ej: Docker).
		log.Println("⚠️ Aviso: Archivo .env no encontrado o error de lectura. Cargando configs solo del ambiente del sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configuraciones cargadas.", nil)

	// 2. Conexión con Recursos de Infraestructura

	// A. Base de Datos (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falla al conectar con la base de datos.", err)
	}
	defer db.Close()
	log.Info("Conexión PostgreSQL establecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexión Redis establecida.", nil)

	// C. Proveedor de datos de respaldo (degradación del dashboard)
	respaldo := demo.NuevoEstatico()

	// 3. INYECCIÓN DE DEPENDENCIAS (Montaje de la Clean Architecture)
	// Orden: Repository -> Service -> Handler

	// A. Repositorios (Capa de Acceso a Datos)
	tallerRepo := tallerrepo.NewTallerRepository(db, cfg.DBTimeout, log)
	transaccionRepo := transaccionrepo.NewTransaccionRepository(db, cfg.DBTimeout, log)
	inventarioRepo := inventariorepo.NewInventarioRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositorios inicializados.", nil)

	// B. Servicios (Capa de Lógica de Negocio)
	tallerSvc := tallerservice.NewService(tallerRepo, log)
	cashoutSvc := cashoutservice.NewService(tallerRepo, transaccionRepo, cacheClient, log)
	transaccionSvc := transaccionservice.NewService(transaccionRepo, cacheClient, respaldo, log)
	inventarioSvc := inventarioservice.NewService(inventarioRepo, cacheClient, log)
	estadisticasSvc := estadisticasservice.NewService(
		tallerRepo, inventarioRepo, transaccionRepo,
		cacheClient, respaldo, cfg.CacheTimeout, log,
	)
	log.Debug("Servicios inicializados.", nil)

	// C. Handlers (Capa de Presentación)
	cashoutHandler := cashout.NewHandler(cashoutSvc, log)
	tallerHandler := taller.NewHandler(tallerSvc, log)
	transaccionHandler := transaccion.NewHandler(transaccionSvc, log)
	estadisticasHandler := estadisticas.NewHandler(estadisticasSvc, log)
	inventarioHandler := inventario.NewHandler(inventarioSvc, log)
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuración e Inicio del Enrutador/Servidor
	r := router.NewRouter(
		cashoutHandler, tallerHandler, transaccionHandler,
		estadisticasHandler, inventarioHandler,
		cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Ejecución y Graceful Shutdown
	go func() {
		log.Info("Servidor Efectivo Fácil escuchando en el puerto", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("El servidor falló: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Señal de apagado recibida. Cerrando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Apagado del servidor forzado.", err)
	}

	log.Info("Servidor cerrado con éxito.", nil)
}
